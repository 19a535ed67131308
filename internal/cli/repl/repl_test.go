package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"PING", []string{"PING"}},
		{"SET k v", []string{"SET", "k", "v"}},
		{"  SET   k\tv  ", []string{"SET", "k", "v"}},
		{`SET k "hello world"`, []string{"SET", "k", "hello world"}},
		{`ECHO "a\nb"`, []string{"ECHO", "a\nb"}},
		{`ECHO "\x41\x7a"`, []string{"ECHO", "Az"}},
		{`ECHO "say \"hi\""`, []string{"ECHO", `say "hi"`}},
		{`ECHO 'it\'s'`, []string{"ECHO", "it's"}},
		{`ECHO 'a\nb'`, []string{"ECHO", `a\nb`}},
		{`ECHO ""`, []string{"ECHO", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Split(tt.line)
			if err != nil {
				t.Fatalf("Split(%q) error: %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplit_Errors(t *testing.T) {
	for _, line := range []string{`ECHO "abc`, `ECHO 'abc`, `ECHO "a"b`, "   "} {
		if _, err := Split(line); err == nil {
			t.Errorf("Split(%q) should fail", line)
		}
	}
	if _, err := Split(`ECHO "abc`); !errors.Is(err, ErrUnbalancedQuotes) {
		t.Errorf("unterminated quote error = %v, want ErrUnbalancedQuotes", err)
	}
}

// recorder is an Executor that logs every call.
type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, w io.Writer, args []string) error {
	r.calls = append(r.calls, args)
	if r.err != nil {
		return r.err
	}
	fmt.Fprintf(w, "ran %s\n", strings.Join(args, " "))
	return nil
}

func newTestREPL(t *testing.T, input string, rec *recorder) (*REPL, *bytes.Buffer, string) {
	t.Helper()
	var out bytes.Buffer
	file := filepath.Join(t.TempDir(), "history")
	r := New("127.0.0.1:6379", rec.exec,
		WithIO(strings.NewReader(input), &out),
		WithHistory(NewHistory(file)),
	)
	return r, &out, file
}

func TestREPL_Run(t *testing.T) {
	rec := &recorder{}
	r, out, _ := newTestREPL(t, "PING\n\nSET k \"a b\"\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := [][]string{{"PING"}, {"SET", "k", "a b"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if !strings.Contains(out.String(), "127.0.0.1:6379> ") {
		t.Errorf("output missing prompt: %q", out.String())
	}
	if !strings.Contains(out.String(), "ran SET k a b") {
		t.Errorf("output missing reply: %q", out.String())
	}
}

func TestREPL_ExitAndQuit(t *testing.T) {
	rec := &recorder{}
	r, _, _ := newTestREPL(t, "PING\nexit\nPING\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("exit: calls = %d, want 1", len(rec.calls))
	}

	rec = &recorder{}
	r, _, _ = newTestREPL(t, "quit\nPING\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !reflect.DeepEqual(rec.calls, [][]string{{"quit"}}) {
		t.Errorf("quit should be sent to the server and end the loop, calls = %q", rec.calls)
	}
}

func TestREPL_ErrorsKeepLooping(t *testing.T) {
	rec := &recorder{err: errors.New("connection refused")}
	r, out, _ := newTestREPL(t, "ECHO \"open\nPING\nPING\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(rec.calls))
	}
	if !strings.Contains(out.String(), "(error) invalid argument(s): unbalanced quotes") {
		t.Errorf("output missing split error: %q", out.String())
	}
	if !strings.Contains(out.String(), "(error) connection refused") {
		t.Errorf("output missing exec error: %q", out.String())
	}
}

func TestREPL_Builtins(t *testing.T) {
	rec := &recorder{}
	r, out, _ := newTestREPL(t, "help se\nhelp nothing\nPING\nhistory\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "SET key value [EX seconds|PX milliseconds]") {
		t.Errorf("help output missing SET: %q", got)
	}
	if !strings.Contains(got, `no command matches "nothing"`) {
		t.Errorf("help output missing no-match line: %q", got)
	}
	if !strings.Contains(got, "   3  PING") {
		t.Errorf("history output missing entry: %q", got)
	}
	if len(rec.calls) != 1 {
		t.Errorf("built-ins should not reach the executor, calls = %q", rec.calls)
	}
}

func TestREPL_CancelledContext(t *testing.T) {
	rec := &recorder{}
	r, _, _ := newTestREPL(t, "PING\n", rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %d, want 0", len(rec.calls))
	}
}

func TestREPL_PersistsHistory(t *testing.T) {
	rec := &recorder{}
	r, _, file := newTestREPL(t, "PING\nGET k\n", rec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "PING\nGET k\n" {
		t.Errorf("history file = %q", data)
	}
}
