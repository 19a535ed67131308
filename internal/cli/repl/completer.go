package repl

import (
	"sort"
	"strings"
)

// Completer suggests command names and their syntax.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for the server's command set.
func NewCompleter() *Completer {
	commands := []string{
		"CONFIG GET parameter [parameter ...]",
		"COMMAND",
		"DBSIZE",
		"DEL key [key ...]",
		"ECHO message",
		"EXISTS key [key ...]",
		"FLUSHALL [ASYNC|SYNC]",
		"FLUSHDB [ASYNC|SYNC]",
		"GET key",
		"PING [message]",
		"PTTL key",
		"QUIT",
		"SET key value [EX seconds|PX milliseconds]",
		"TTL key",
		"exit",
		"help [prefix]",
		"history",
	}
	sort.Strings(commands)
	return &Completer{commands: commands}
}

// Complete returns the entries whose name starts with prefix,
// ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	var out []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToUpper(cmd), prefix) {
			out = append(out, cmd)
		}
	}
	return out
}
