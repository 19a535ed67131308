package redisserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Protocol limits to keep a single client from exhausting memory.
const (
	// MaxArrayLen limits the number of elements in a request array.
	MaxArrayLen = 1024 * 1024

	// MaxBulkLen limits the size of a single bulk string (512MB).
	MaxBulkLen = 512 * 1024 * 1024

	// MaxHeaderLen limits a "*<n>\r\n" or "$<len>\r\n" line, terminator included.
	MaxHeaderLen = 32
)

var (
	ErrProtocol      = errors.New("resp: protocol error")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
	// ErrIncomplete means the buffer holds a valid prefix of a frame;
	// read more bytes and parse again.
	ErrIncomplete = errors.New("resp: incomplete frame")
)

// Request is a decoded command: the name followed by its arguments.
// Each element is an independent copy of the bytes on the wire.
type Request [][]byte

// Name returns the upper-cased command name.
func (r Request) Name() string {
	if len(r) == 0 {
		return ""
	}
	return normalizeCommandName(r[0])
}

// Args returns the arguments after the command name.
func (r Request) Args() [][]byte {
	if len(r) == 0 {
		return nil
	}
	return r[1:]
}

// Parse decodes one request frame from the start of buf.
//
// It returns the request and the number of bytes consumed. ErrIncomplete is
// returned when buf ends before the frame does; any error wrapping
// ErrProtocol means the stream cannot be decoded further.
func Parse(buf []byte) (Request, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrIncomplete
	}
	if buf[0] != '*' {
		return nil, 0, fmt.Errorf("%w: expected '*', got %q", ErrProtocol, buf[0])
	}

	n, pos, err := parseHeader(buf, 0)
	if err != nil {
		return nil, 0, err
	}
	if n > MaxArrayLen {
		return nil, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	// Elements are copied out only once the whole frame is present.
	type span struct{ start, end int }
	spans := make([]span, 0, min(n, 64))

	for i := 0; i < n; i++ {
		if pos >= len(buf) {
			return nil, 0, ErrIncomplete
		}
		if buf[pos] != '$' {
			return nil, 0, fmt.Errorf("%w: expected '$', got %q", ErrProtocol, buf[pos])
		}
		size, next, err := parseHeader(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		if size > MaxBulkLen {
			return nil, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, size, MaxBulkLen)
		}
		end := next + size
		if len(buf) < end+2 {
			if len(buf) > end && buf[end] != '\r' {
				return nil, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
			}
			return nil, 0, ErrIncomplete
		}
		if buf[end] != '\r' || buf[end+1] != '\n' {
			return nil, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
		}
		spans = append(spans, span{next, end})
		pos = end + 2
	}

	req := make(Request, len(spans))
	for i, sp := range spans {
		req[i] = bytes.Clone(buf[sp.start:sp.end])
		if req[i] == nil {
			req[i] = []byte{}
		}
	}
	return req, pos, nil
}

// parseHeader decodes "<type><digits>\r\n" starting at buf[at].
// It returns the length value and the offset just past the terminator.
func parseHeader(buf []byte, at int) (int, int, error) {
	limit := min(len(buf), at+MaxHeaderLen)
	idx := bytes.IndexByte(buf[at:limit], '\n')
	if idx < 0 {
		if limit-at >= MaxHeaderLen {
			return 0, 0, fmt.Errorf("%w: header line too long", ErrProtocol)
		}
		return 0, 0, ErrIncomplete
	}
	lineEnd := at + idx
	if idx < 2 || buf[lineEnd-1] != '\r' {
		return 0, 0, fmt.Errorf("%w: missing CRLF", ErrProtocol)
	}
	n, err := parseLength(buf[at+1 : lineEnd-1])
	if err != nil {
		return 0, 0, err
	}
	return n, lineEnd + 1, nil
}

// parseLength accepts only non-empty runs of ASCII digits.
func parseLength(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, fmt.Errorf("%w: empty length", ErrProtocol)
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid length %q", ErrProtocol, b)
		}
		n = n*10 + int(c-'0')
		if n > MaxBulkLen {
			return 0, fmt.Errorf("%w: length %q exceeds limit", ErrLimitExceeded, b)
		}
	}
	return n, nil
}

// RequestReader reads pipelined requests from a byte stream.
type RequestReader struct {
	r     io.Reader
	buf   []byte
	start int
	end   int
}

const readChunk = 4096

// NewRequestReader creates a RequestReader over r.
func NewRequestReader(r io.Reader) *RequestReader {
	return &RequestReader{
		r:   r,
		buf: make([]byte, readChunk),
	}
}

// ReadRequest returns the next request, reading from the stream as needed.
// io.EOF is returned on a clean end of stream; io.ErrUnexpectedEOF when the
// stream ends inside a frame.
func (rr *RequestReader) ReadRequest() (Request, error) {
	for {
		if rr.end > rr.start {
			req, n, err := Parse(rr.buf[rr.start:rr.end])
			if err == nil {
				rr.start += n
				if rr.start == rr.end {
					rr.start, rr.end = 0, 0
				}
				return req, nil
			}
			if !errors.Is(err, ErrIncomplete) {
				return nil, err
			}
		}
		if err := rr.fill(); err != nil {
			if errors.Is(err, io.EOF) && rr.end > rr.start {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}

// Buffered reports how many unread bytes are held in the reader.
func (rr *RequestReader) Buffered() int {
	return rr.end - rr.start
}

// fill reads at least one more byte into the buffer.
func (rr *RequestReader) fill() error {
	if rr.start > 0 {
		copy(rr.buf, rr.buf[rr.start:rr.end])
		rr.end -= rr.start
		rr.start = 0
	}
	if rr.end == len(rr.buf) {
		grown := make([]byte, 2*len(rr.buf))
		copy(grown, rr.buf[:rr.end])
		rr.buf = grown
	}
	for {
		n, err := rr.r.Read(rr.buf[rr.end:])
		rr.end += n
		if n > 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ============================================================
// Replies
// ============================================================

// Reply is a server response. The set of reply kinds is closed.
type Reply interface {
	appendTo(dst []byte) []byte
}

// SimpleString is a "+<s>" reply. s must not contain CR or LF.
type SimpleString string

// BulkString is a binary-safe "$<len>" reply.
type BulkString []byte

// NullBulkString is the "$-1" miss reply.
type NullBulkString struct{}

// Integer is a ":<n>" reply.
type Integer int64

// Error is a "-<kind> <msg>" reply.
type Error struct {
	Kind string
	Msg  string
}

// Array is a "*<n>" reply holding nested replies.
type Array []Reply

// Common replies.
var (
	ReplyOK   Reply = SimpleString("OK")
	ReplyPong Reply = SimpleString("PONG")
	ReplyNull Reply = NullBulkString{}
)

// Errorf builds an ERR reply.
func Errorf(format string, args ...any) Error {
	return Error{Kind: "ERR", Msg: fmt.Sprintf(format, args...)}
}

func (s SimpleString) appendTo(dst []byte) []byte {
	dst = append(dst, '+')
	dst = appendLine(dst, string(s))
	return append(dst, '\r', '\n')
}

func (b BulkString) appendTo(dst []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, b...)
	return append(dst, '\r', '\n')
}

func (NullBulkString) appendTo(dst []byte) []byte {
	return append(dst, "$-1\r\n"...)
}

func (n Integer) appendTo(dst []byte) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, '\r', '\n')
}

func (e Error) appendTo(dst []byte) []byte {
	dst = append(dst, '-')
	dst = appendLine(dst, e.Kind)
	if e.Msg != "" {
		dst = append(dst, ' ')
		dst = appendLine(dst, e.Msg)
	}
	return append(dst, '\r', '\n')
}

func (a Array) appendTo(dst []byte) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(a)), 10)
	dst = append(dst, '\r', '\n')
	for _, item := range a {
		dst = item.appendTo(dst)
	}
	return dst
}

// appendLine appends s with CR and LF replaced by spaces, so a single-line
// reply can never carry client bytes that end the frame early.
func appendLine(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' {
			c = ' '
		}
		dst = append(dst, c)
	}
	return dst
}

// AppendReply appends the wire encoding of r to dst.
func AppendReply(dst []byte, r Reply) []byte {
	if r == nil {
		return ReplyNull.appendTo(dst)
	}
	return r.appendTo(dst)
}

// Encode returns the wire encoding of r.
func Encode(r Reply) []byte {
	return AppendReply(nil, r)
}

// EncodeRequest encodes args as an array of bulk strings, the only frame
// clients send.
func EncodeRequest(args ...[]byte) []byte {
	items := make(Array, len(args))
	for i, a := range args {
		items[i] = BulkString(a)
	}
	return Encode(items)
}

func normalizeCommandName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	// Uppercase ASCII without allocating for already uppercased tokens.
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return string(bytes.ToUpper(b))
	}
	return string(b)
}
