package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cool4zbl/build-redis-from-scratch/internal/cli/connection"
	"github.com/cool4zbl/build-redis-from-scratch/internal/cli/output"
	"github.com/cool4zbl/build-redis-from-scratch/internal/cli/repl"
	"github.com/cool4zbl/build-redis-from-scratch/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:            "respkv-cli",
		Usage:           "command-line client for the respkv server",
		UsageText:       "respkv-cli [global options] [command [arg ...]]",
		Version:         buildinfo.String(),
		Flags:           globalFlags(),
		HideHelpCommand: true,
		Action:          run,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "server address",
			EnvVars: []string{"RESPKV_ADDR"},
			Value:   "127.0.0.1:6379",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: raw, json, yaml",
			Value:   string(output.FormatRaw),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and per-command timeout",
			Value: connection.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "history",
			Usage:   "REPL history file (default ~/.respkv_history)",
			EnvVars: []string{"RESPKV_HISTFILE"},
		},
	}
}

// GlobalFlags holds the parsed global flags.
type GlobalFlags struct {
	Addr    string
	Output  output.Format
	Timeout time.Duration
	History string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{
		Addr:    c.String("addr"),
		Output:  format,
		Timeout: c.Duration("timeout"),
		History: c.String("history"),
	}, nil
}

func run(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	client := connection.NewClient(flags.Addr, flags.Timeout)
	defer client.Close()

	exec := executor(client, output.NewFormatter(flags.Output))

	if c.Args().Present() {
		return exec(c.Context, c.App.Writer, c.Args().Slice())
	}

	r := repl.New(flags.Addr, exec,
		repl.WithIO(reader(c), c.App.Writer),
		repl.WithHistory(repl.NewHistory(flags.History)),
	)
	return r.Run(c.Context)
}

// executor sends args through client and prints the reply with f.
func executor(client *connection.Client, f output.Formatter) repl.Executor {
	return func(ctx context.Context, w io.Writer, args []string) error {
		v, err := client.Do(ctx, args...)
		if err != nil {
			return fmt.Errorf("could not talk to %s: %w", client.Addr(), err)
		}
		return f.Format(w, v)
	}
}

func reader(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}
