package connection

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/tidwall/resp"

	"github.com/cool4zbl/build-redis-from-scratch/internal/server/redisserver"
	"github.com/cool4zbl/build-redis-from-scratch/internal/storage/memory"
)

func startServer(t *testing.T) string {
	t.Helper()

	store := memory.New(memory.WithConfig(memory.ConfigDir, "/tmp/redis-files"))
	t.Cleanup(func() { _ = store.Close() })

	srv := redisserver.New(&redisserver.Config{Address: "127.0.0.1:0"}, store,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

func TestClient_Do(t *testing.T) {
	c := NewClient(startServer(t), time.Second)
	defer c.Close()
	ctx := context.Background()

	v, err := c.Do(ctx, "PING")
	if err != nil {
		t.Fatalf("Do(PING) error = %v", err)
	}
	if v.Type() != resp.SimpleString || v.String() != "PONG" {
		t.Errorf("PING = %v %q", v.Type(), v.String())
	}

	if _, err := c.Do(ctx, "SET", "k", "a b\r\nc"); err != nil {
		t.Fatalf("Do(SET) error = %v", err)
	}
	v, err = c.Do(ctx, "GET", "k")
	if err != nil {
		t.Fatalf("Do(GET) error = %v", err)
	}
	if v.Type() != resp.BulkString || v.String() != "a b\r\nc" {
		t.Errorf("GET = %v %q", v.Type(), v.String())
	}

	v, err = c.Do(ctx, "GET", "missing")
	if err != nil {
		t.Fatalf("Do(GET missing) error = %v", err)
	}
	if !v.IsNull() {
		t.Errorf("GET missing = %q, want null", v.String())
	}

	v, err = c.Do(ctx, "CONFIG", "GET", "dir")
	if err != nil {
		t.Fatalf("Do(CONFIG) error = %v", err)
	}
	if arr := v.Array(); len(arr) != 2 || arr[1].String() != "/tmp/redis-files" {
		t.Errorf("CONFIG GET dir = %v", arr)
	}
}

func TestClient_ErrorReplyIsValue(t *testing.T) {
	c := NewClient(startServer(t), time.Second)
	defer c.Close()

	v, err := c.Do(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if v.Type() != resp.Error || v.Error() == nil {
		t.Fatalf("reply type = %v, want Error", v.Type())
	}
	if got := v.Error().Error(); got != "ERR unknown command 'NOPE'" {
		t.Errorf("error = %q", got)
	}
}

func TestClient_ReuseAfterClose(t *testing.T) {
	c := NewClient(startServer(t), time.Second)
	defer c.Close()
	ctx := context.Background()

	v, err := c.Do(ctx, "QUIT")
	if err != nil {
		t.Fatalf("Do(QUIT) error = %v", err)
	}
	if v.String() != "OK" {
		t.Errorf("QUIT = %q", v.String())
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := c.Do(ctx, "PING"); err != nil {
		t.Errorf("Do(PING) after Close error = %v", err)
	}
}

func TestClient_EmptyCommand(t *testing.T) {
	c := NewClient("127.0.0.1:1", time.Second)
	if _, err := c.Do(context.Background()); err == nil {
		t.Error("Do() with no args error = nil")
	}
}

func TestClient_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	c := NewClient(addr, 200*time.Millisecond)
	if _, err := c.Do(context.Background(), "PING"); err == nil {
		t.Error("Do() error = nil for closed port")
	}
}

func TestClient_CloseWithoutConnect(t *testing.T) {
	c := NewClient("127.0.0.1:1", 0)
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, DefaultTimeout)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if c.Addr() != "127.0.0.1:1" {
		t.Errorf("Addr() = %q", c.Addr())
	}
}
