// Package command provides the CLI definition of respkv-cli.
//
// It uses urfave/cli/v2 for flag parsing. With positional arguments the
// CLI sends them as one command and prints the reply; without, it starts
// the interactive REPL.
package command
