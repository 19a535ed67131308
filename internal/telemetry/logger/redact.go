package logger

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// MaxPayloadLen is the longest client payload written to a log entry.
const MaxPayloadLen = 64

// Keys whose values carry client data rather than server state.
var payloadKeys = map[string]bool{
	"payload": true,
	"value":   true,
	"args":    true,
}

// Key patterns that should never be logged in clear.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactAttr rewrites one attribute before it is written.
func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactAttr(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if IsSensitiveKey(a.Key) {
		if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
			return a
		}
		return slog.String(a.Key, redactedValue)
	}

	if payloadKeys[strings.ToLower(a.Key)] {
		switch v := a.Value.Any().(type) {
		case string:
			return slog.String(a.Key, TruncatePayload([]byte(v)))
		case []byte:
			return slog.String(a.Key, TruncatePayload(v))
		case [][]byte:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = TruncatePayload(p)
			}
			return slog.Any(a.Key, parts)
		}
	}

	return a
}

// TruncatePayload renders client bytes for a log line: quoted, cut to
// MaxPayloadLen bytes with the full length noted when longer.
func TruncatePayload(b []byte) string {
	if len(b) <= MaxPayloadLen {
		return fmt.Sprintf("%q", b)
	}
	cut := MaxPayloadLen
	// Avoid splitting a UTF-8 sequence.
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return fmt.Sprintf("%q...(%d bytes)", b[:cut], len(b))
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
