package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactAttr_SensitiveKeys(t *testing.T) {
	tests := []struct {
		attr slog.Attr
		want string
	}{
		{slog.String("password", "hunter2"), redactedValue},
		{slog.String("AuthHeader", "Basic abc"), redactedValue},
		{slog.Int("token_count", 3), redactedValue},
		{slog.String("secret", ""), ""},
		{slog.String("command", "GET"), "GET"},
		{slog.String("key", "user:1"), "user:1"},
	}
	for _, tt := range tests {
		if got := redactAttr(tt.attr).Value.String(); got != tt.want {
			t.Errorf("redactAttr(%s) = %q, want %q", tt.attr.Key, got, tt.want)
		}
	}
}

func TestRedactAttr_Payload(t *testing.T) {
	short := redactAttr(slog.Any("value", []byte("bar")))
	if got := short.Value.String(); got != `"bar"` {
		t.Errorf("short payload = %s", got)
	}

	long := strings.Repeat("x", 1000)
	got := redactAttr(slog.String("payload", long)).Value.String()
	if !strings.HasSuffix(got, "...(1000 bytes)") {
		t.Errorf("long payload = %s", got)
	}
	if len(got) > MaxPayloadLen+32 {
		t.Errorf("long payload not truncated: %d bytes", len(got))
	}

	args := redactAttr(slog.Any("args", [][]byte{[]byte("k"), []byte("a\r\nb")}))
	parts, ok := args.Value.Any().([]string)
	if !ok || len(parts) != 2 || parts[1] != `"a\r\nb"` {
		t.Errorf("args = %v", args.Value.Any())
	}
}

func TestTruncatePayload_UTF8(t *testing.T) {
	b := []byte(strings.Repeat("a", MaxPayloadLen-1) + "é" + "tail")
	got := TruncatePayload(b)
	if strings.Contains(got, `\xc3"`) {
		t.Errorf("split UTF-8 sequence: %s", got)
	}
}

func TestLogger_RedactsOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("set", "value", strings.Repeat("v", 500), "password", "p")
	out := buf.String()
	if strings.Contains(out, strings.Repeat("v", 100)) {
		t.Errorf("payload not truncated: %s", out)
	}
	if strings.Contains(out, "password=p") {
		t.Errorf("password leaked: %s", out)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for _, key := range []string{"password", "db_secret", "Token", "credentials"} {
		if !IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = false", key)
		}
	}
	for _, key := range []string{"dir", "dbfilename", "conn_id"} {
		if IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = true", key)
		}
	}
}
