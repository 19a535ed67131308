package connection

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/tidwall/resp"

	"github.com/cool4zbl/build-redis-from-scratch/internal/server/redisserver"
)

// DefaultTimeout bounds dialing and each request/reply exchange.
const DefaultTimeout = 5 * time.Second

// Client is a RESP client over one TCP connection. It is safe for
// concurrent use; requests are serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	rd   *resp.Reader
}

// NewClient creates a client for addr. Nothing is dialed until Connect
// or the first Do.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Connect dials the server if not already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return err
	}
	c.conn = conn
	c.rd = resp.NewReader(conn)
	return nil
}

// Do sends one command and returns the decoded reply. Error replies are
// returned as values, not as a Go error; the error result is reserved for
// transport failures, after which the connection is dropped.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("connection: empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return resp.Value{}, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.dropLocked()
		return resp.Value{}, err
	}

	frame := make([][]byte, len(args))
	for i, a := range args {
		frame[i] = []byte(a)
	}
	if _, err := c.conn.Write(redisserver.EncodeRequest(frame...)); err != nil {
		c.dropLocked()
		return resp.Value{}, err
	}

	v, _, err := c.rd.ReadValue()
	if err != nil {
		c.dropLocked()
		return resp.Value{}, err
	}
	return v, nil
}

// Close closes the connection. The client may be reused; the next Do
// dials again.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.rd = nil, nil
	return err
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.rd = nil, nil
}
