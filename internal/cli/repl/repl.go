package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one command line, already split into arguments, and
// writes its reply to w.
type Executor func(ctx context.Context, w io.Writer, args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO overrides stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a REPL whose prompt shows addr.
func New(addr string, exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    addr + "> ",
		exec:      exec,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads lines until EOF, exit or quit, or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: history not loaded: %v\n", err)
	}
	defer func() { _ = r.history.Save() }()

	scanner := bufio.NewScanner(r.input)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt)

		if !scanner.Scan() {
			fmt.Fprintln(r.output)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.output, "(error) %v\n", err)
			continue
		}

		switch strings.ToLower(args[0]) {
		case "exit":
			return nil
		case "help":
			r.help(args[1:])
			continue
		case "history":
			for i, entry := range r.history.Entries() {
				fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
			}
			continue
		}

		if err := r.exec(ctx, r.output, args); err != nil {
			fmt.Fprintf(r.output, "(error) %v\n", err)
		}
		if strings.EqualFold(args[0], "quit") {
			return nil
		}
	}
}

func (r *REPL) help(args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "no command matches %q\n", prefix)
		return
	}
	for _, m := range matches {
		fmt.Fprintln(r.output, m)
	}
}

// ErrUnbalancedQuotes is returned by Split for an unterminated quote.
var ErrUnbalancedQuotes = errors.New("invalid argument(s): unbalanced quotes")

// Split breaks a line into arguments. Double-quoted arguments support
// \n, \r, \t, \", \\ and \xHH escapes; single-quoted arguments are literal
// except for \'.
func Split(line string) ([]string, error) {
	var (
		args []string
		cur  strings.Builder
		in   bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			if in {
				args = append(args, cur.String())
				cur.Reset()
				in = false
			}
		case c == '"' || c == '\'':
			end, err := quoted(line, i, &cur)
			if err != nil {
				return nil, err
			}
			i = end
			in = true
			if i+1 < len(line) && line[i+1] != ' ' && line[i+1] != '\t' {
				return nil, ErrUnbalancedQuotes
			}
		default:
			cur.WriteByte(c)
			in = true
		}
	}
	if in {
		args = append(args, cur.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}

// quoted consumes a quoted section starting at line[start] into cur and
// returns the index of the closing quote.
func quoted(line string, start int, cur *strings.Builder) (int, error) {
	q := line[start]
	for i := start + 1; i < len(line); i++ {
		c := line[i]
		if c == q {
			return i, nil
		}
		if c != '\\' || i+1 >= len(line) {
			cur.WriteByte(c)
			continue
		}
		next := line[i+1]
		if q == '\'' {
			if next == '\'' {
				cur.WriteByte('\'')
				i++
			} else {
				cur.WriteByte(c)
			}
			continue
		}
		i++
		switch next {
		case 'n':
			cur.WriteByte('\n')
		case 'r':
			cur.WriteByte('\r')
		case 't':
			cur.WriteByte('\t')
		case 'x':
			if i+2 < len(line) && isHex(line[i+1]) && isHex(line[i+2]) {
				cur.WriteByte(unhex(line[i+1])<<4 | unhex(line[i+2]))
				i += 2
			} else {
				cur.WriteByte('x')
			}
		default:
			cur.WriteByte(next)
		}
	}
	return 0, ErrUnbalancedQuotes
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
