package redisserver

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cool4zbl/build-redis-from-scratch/internal/storage/memory"
)

// Store is the key-value surface the commands operate on.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	SetWithTTL(key string, value []byte, ttl time.Duration)
	Delete(key string) bool
	Exists(key string) bool
	Flush()
	TTL(key string) (time.Duration, memory.TTLState)
	Len() int
	ConfigGet(name string) (string, bool)
}

// Command is one server command.
type Command interface {
	// Name is the upper-case command name.
	Name() string
	// Arity is the required number of request elements, name included.
	// A negative value -N means at least N.
	Arity() int
	// Exec runs the command. args excludes the command name and has
	// already been checked against Arity.
	Exec(store Store, args [][]byte) Reply
}

// CommandHandler maps requests to commands and runs them against the store.
type CommandHandler struct {
	store    Store
	commands map[string]Command
}

// NewCommandHandler creates a CommandHandler with the built-in command table.
func NewCommandHandler(store Store) *CommandHandler {
	h := &CommandHandler{
		store:    store,
		commands: make(map[string]Command),
	}

	for _, cmd := range []Command{
		pingCommand{},
		echoCommand{},
		setCommand{},
		getCommand{},
		delCommand{},
		existsCommand{},
		flushCommand{name: "FLUSHALL"},
		flushCommand{name: "FLUSHDB"},
		dbsizeCommand{},
		ttlCommand{name: "TTL", unit: time.Second},
		ttlCommand{name: "PTTL", unit: time.Millisecond},
		configCommand{},
		commandCommand{},
	} {
		h.commands[cmd.Name()] = cmd
	}

	return h
}

// Lookup returns the command registered under name (case-insensitive).
func (h *CommandHandler) Lookup(name string) (Command, bool) {
	cmd, ok := h.commands[strings.ToUpper(name)]
	return cmd, ok
}

// Dispatch runs req and returns its reply. It never fails: every problem
// with the request becomes an error reply.
func (h *CommandHandler) Dispatch(req Request) Reply {
	if len(req) == 0 {
		return Errorf("no command")
	}

	name := req.Name()
	cmd, ok := h.commands[name]
	if !ok {
		return Errorf("unknown command '%s'", req[0])
	}

	if !arityOK(cmd.Arity(), len(req)) {
		return wrongArity(name)
	}

	return cmd.Exec(h.store, req.Args())
}

func arityOK(arity, n int) bool {
	if arity >= 0 {
		return n == arity
	}
	return n >= -arity
}

func wrongArity(name string) Reply {
	return Errorf("wrong number of arguments for '%s' command", name)
}

var (
	errSyntax     = Errorf("syntax error")
	errNotInteger = Errorf("value is not an integer or out of range")
)

// ============================================================
// Connection and server commands
// ============================================================

// PING [message]
type pingCommand struct{}

func (pingCommand) Name() string { return "PING" }
func (pingCommand) Arity() int   { return -1 }

func (pingCommand) Exec(_ Store, args [][]byte) Reply {
	switch len(args) {
	case 0:
		return ReplyPong
	case 1:
		return BulkString(args[0])
	default:
		return wrongArity("PING")
	}
}

// ECHO message
type echoCommand struct{}

func (echoCommand) Name() string { return "ECHO" }
func (echoCommand) Arity() int   { return 2 }

func (echoCommand) Exec(_ Store, args [][]byte) Reply {
	return BulkString(args[0])
}

// COMMAND [subcommand ...]
//
// Answers the handshake redis-cli sends on connect; no command docs are served.
type commandCommand struct{}

func (commandCommand) Name() string { return "COMMAND" }
func (commandCommand) Arity() int   { return -1 }

func (commandCommand) Exec(_ Store, _ [][]byte) Reply {
	return Array{}
}

// CONFIG GET parameter [parameter ...]
type configCommand struct{}

func (configCommand) Name() string { return "CONFIG" }
func (configCommand) Arity() int   { return -2 }

func (configCommand) Exec(store Store, args [][]byte) Reply {
	sub := strings.ToUpper(string(args[0]))
	if sub != "GET" {
		return Errorf("unknown subcommand '%s'. Try CONFIG GET", args[0])
	}
	if len(args) < 2 {
		return Errorf("wrong number of arguments for 'CONFIG|GET' command")
	}

	// Unknown parameters are omitted, so a lone unknown name yields an empty array.
	out := Array{}
	for _, name := range args[1:] {
		value, ok := store.ConfigGet(string(name))
		if !ok {
			continue
		}
		out = append(out, BulkString(name), BulkString(value))
	}
	return out
}

// ============================================================
// Keyspace commands
// ============================================================

// GET key
type getCommand struct{}

func (getCommand) Name() string { return "GET" }
func (getCommand) Arity() int   { return 2 }

func (getCommand) Exec(store Store, args [][]byte) Reply {
	value, ok := store.Get(string(args[0]))
	if !ok {
		return ReplyNull
	}
	return BulkString(value)
}

// SET key value [EX seconds | PX milliseconds]
type setCommand struct{}

func (setCommand) Name() string { return "SET" }
func (setCommand) Arity() int   { return -3 }

func (setCommand) Exec(store Store, args [][]byte) Reply {
	key, value := string(args[0]), args[1]

	var (
		ttl    time.Duration
		hasTTL bool
	)
	for i := 2; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		var unit time.Duration
		switch opt {
		case "EX":
			unit = time.Second
		case "PX":
			unit = time.Millisecond
		default:
			return errSyntax
		}
		if hasTTL || i+1 >= len(args) {
			return errSyntax
		}
		i++

		d, reply := parseExpire(args[i], unit)
		if reply != nil {
			return reply
		}
		ttl, hasTTL = d, true
	}

	if hasTTL {
		store.SetWithTTL(key, value, ttl)
	} else {
		store.Set(key, value)
	}
	return ReplyOK
}

// parseExpire converts an EX/PX argument into a duration.
func parseExpire(arg []byte, unit time.Duration) (time.Duration, Reply) {
	n, err := strconv.ParseInt(string(arg), 10, 64)
	if err != nil {
		return 0, errNotInteger
	}
	if n < 0 || n > math.MaxInt64/int64(unit) {
		return 0, Errorf("invalid expire time in 'set' command")
	}
	return time.Duration(n) * unit, nil
}

// DEL key [key ...]
type delCommand struct{}

func (delCommand) Name() string { return "DEL" }
func (delCommand) Arity() int   { return -2 }

func (delCommand) Exec(store Store, args [][]byte) Reply {
	var deleted int64
	for _, key := range args {
		if store.Delete(string(key)) {
			deleted++
		}
	}
	return Integer(deleted)
}

// EXISTS key [key ...]
type existsCommand struct{}

func (existsCommand) Name() string { return "EXISTS" }
func (existsCommand) Arity() int   { return -2 }

func (existsCommand) Exec(store Store, args [][]byte) Reply {
	var n int64
	for _, key := range args {
		if store.Exists(string(key)) {
			n++
		}
	}
	return Integer(n)
}

// FLUSHALL / FLUSHDB. The ASYNC and SYNC modifiers are accepted and ignored.
type flushCommand struct {
	name string
}

func (c flushCommand) Name() string { return c.name }
func (flushCommand) Arity() int     { return -1 }

func (c flushCommand) Exec(store Store, args [][]byte) Reply {
	if len(args) > 1 {
		return wrongArity(c.name)
	}
	if len(args) == 1 {
		switch strings.ToUpper(string(args[0])) {
		case "ASYNC", "SYNC":
		default:
			return errSyntax
		}
	}
	store.Flush()
	return ReplyOK
}

// DBSIZE
type dbsizeCommand struct{}

func (dbsizeCommand) Name() string { return "DBSIZE" }
func (dbsizeCommand) Arity() int   { return 1 }

func (dbsizeCommand) Exec(store Store, _ [][]byte) Reply {
	return Integer(store.Len())
}

// TTL key / PTTL key
//
// Replies -2 when the key is missing and -1 when it has no expiry.
type ttlCommand struct {
	name string
	unit time.Duration
}

func (c ttlCommand) Name() string { return c.name }
func (ttlCommand) Arity() int     { return 2 }

func (c ttlCommand) Exec(store Store, args [][]byte) Reply {
	d, state := store.TTL(string(args[0]))
	switch state {
	case memory.TTLMissing:
		return Integer(-2)
	case memory.TTLPersistent:
		return Integer(-1)
	}
	// Round to the nearest unit, as redis does for TTL.
	return Integer((d + c.unit/2) / c.unit)
}
