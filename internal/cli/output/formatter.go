package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/resp"
)

// Format represents the output format.
type Format string

const (
	FormatRaw  Format = "raw"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatRaw, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want raw, json or yaml)", s)
	}
}

// Formatter writes one reply.
type Formatter interface {
	Format(w io.Writer, v resp.Value) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &RawFormatter{}
	}
}

// ReplyError is the plain form of an error reply.
type ReplyError struct {
	Error string `json:"error" yaml:"error"`
}

// Plain converts a reply into plain Go values: string, int, nil,
// ReplyError or []any.
func Plain(v resp.Value) any {
	switch v.Type() {
	case resp.SimpleString:
		return v.String()
	case resp.BulkString:
		if v.IsNull() {
			return nil
		}
		return v.String()
	case resp.Integer:
		return v.Integer()
	case resp.Error:
		return ReplyError{Error: v.String()}
	case resp.Array:
		if v.IsNull() {
			return nil
		}
		items := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = Plain(item)
		}
		return out
	default:
		return v.String()
	}
}
