// Package repl provides the interactive mode of respkv-cli.
//
// Lines are split into arguments with redis-cli quoting rules, sent to
// the server, and the replies printed. Built-ins: help [prefix],
// history, exit and quit.
package repl
