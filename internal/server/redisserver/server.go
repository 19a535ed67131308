package redisserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/cool4zbl/build-redis-from-scratch/internal/telemetry/metric"
	"github.com/cool4zbl/build-redis-from-scratch/pkg/cmap"
)

// Config holds the Redis server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// WriteTimeout bounds writing one batch of replies (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout closes connections that send nothing for this long.
	// Zero keeps idle connections open indefinitely.
	IdleTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  0,
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	logger  *slog.Logger
	metrics *metric.Registry

	mu       sync.Mutex
	ln       net.Listener
	stopping bool
	running  atomic.Bool
	wg      sync.WaitGroup
	conns   *cmap.Map[string, *Conn]

	// warnLimit throttles protocol-error warnings from misbehaving clients.
	warnLimit *rate.Limiter
}

// Conn represents a single client connection.
type Conn struct {
	id           string
	netConn      net.Conn
	rr           *RequestReader
	bw           *bufio.Writer
	out          []byte
	writeTimeout time.Duration

	closed atomic.Bool
}

func newConn(c net.Conn, writeTimeout time.Duration) *Conn {
	conn := &Conn{
		id:           ulid.Make().String(),
		netConn:      c,
		bw:           bufio.NewWriter(c),
		writeTimeout: writeTimeout,
	}
	conn.rr = NewRequestReader(readFlusher{conn})
	return conn
}

// readFlusher flushes pending replies before blocking on the socket, so
// pipelined replies go out in one write and nothing waits on a read.
type readFlusher struct {
	c *Conn
}

func (rf readFlusher) Read(p []byte) (int, error) {
	if err := rf.c.flush(); err != nil {
		return 0, err
	}
	return rf.c.netConn.Read(p)
}

func (c *Conn) flush() error {
	if c.bw.Buffered() == 0 {
		return nil
	}
	if err := c.armWrite(); err != nil {
		return err
	}
	return c.bw.Flush()
}

// armWrite starts a fresh write deadline before bytes reach the socket.
func (c *Conn) armWrite() error {
	if c.writeTimeout <= 0 {
		return nil
	}
	return c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// Close closes the underlying socket. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// New creates a new Redis protocol server over store.
// metrics may be nil.
func New(cfg *Config, store Store, logger *slog.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:       cfg,
		handler:   NewCommandHandler(store),
		logger:    logger,
		metrics:   metrics,
		conns:     cmap.New[string, *Conn](),
		warnLimit: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Start binds the listen address and serves connections in the background.
// Cancelling ctx has the same effect as Shutdown without waiting.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{Control: reuseControl}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Serve(ctx, ln); err != nil {
			s.logger.Error("redis server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start/Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections on ln until the listener is closed, handing
// each one to its own goroutine. It takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.ln = ln
	s.running.Store(true)
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = s.closeAll() })
	defer stop()

	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.logger.Warn("accept timeout", "error", err)
				continue
			}
			return err
		}

		conn := newConn(c, s.cfg.WriteTimeout)

		// Registration and closeAll serialize on mu: a connection is either
		// visible to closeAll's sweep or refused here.
		s.mu.Lock()
		if s.stopping {
			s.mu.Unlock()
			_ = c.Close()
			return nil
		}
		s.conns.Set(conn.id, conn)
		s.wg.Add(1)
		s.mu.Unlock()
		s.metrics.ConnOpened()

		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting, closes every open connection and waits for
// their goroutines to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	firstErr := s.closeAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

// closeAll closes the listener and all tracked connections.
func (s *Server) closeAll() error {
	var firstErr error
	s.mu.Lock()
	s.stopping = true
	s.running.Store(false)
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	s.mu.Unlock()

	s.conns.Range(func(_ string, c *Conn) bool {
		_ = c.Close()
		return true
	})
	return firstErr
}

// Accepting reports whether the accept loop is running.
func (s *Server) Accepting() bool {
	return s.running.Load()
}

// ConnCount returns the number of open client connections.
func (s *Server) ConnCount() int {
	return s.conns.Count()
}

// release is the single exit path of a connection.
func (s *Server) release(c *Conn) {
	_ = c.Close()
	if _, ok := s.conns.Pop(c.id); ok {
		s.metrics.ConnClosed()
	}
}

func (s *Server) serveConn(_ context.Context, c *Conn) {
	defer s.release(c)

	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection opened")

	for {
		if s.cfg.IdleTimeout > 0 && c.rr.Buffered() == 0 {
			if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		req, err := c.rr.ReadRequest()
		if err != nil {
			s.handleReadError(c, log, err)
			return
		}

		name := req.Name()
		if name == "QUIT" {
			_ = c.writeReply(ReplyOK)
			_ = c.flush()
			log.Debug("connection closed by QUIT")
			return
		}

		start := time.Now()
		reply := s.handler.Dispatch(req)
		_, failed := reply.(Error)
		s.metrics.ObserveCommand(s.metricName(name), !failed, time.Since(start))

		if failed {
			log.Debug("command failed", "command", name, "args", req.Args(), "reply", reply.(Error).Msg)
		}

		if err := c.writeReply(reply); err != nil {
			log.Debug("write error", "error", err)
			return
		}
	}
}

func (s *Server) handleReadError(c *Conn, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, io.EOF):
		log.Debug("connection closed by peer")
	case errors.Is(err, ErrProtocol), errors.Is(err, ErrLimitExceeded):
		s.metrics.ProtocolError()
		if s.warnLimit.Allow() {
			log.Warn("protocol error, closing connection", "error", err)
		}
		// The stream cannot be resynchronized; report and drop the connection.
		_ = c.writeReply(Errorf("Protocol error: %s", protocolDetail(err)))
		_ = c.flush()
	case errors.Is(err, io.ErrUnexpectedEOF):
		log.Debug("connection closed mid-frame")
	case errors.Is(err, net.ErrClosed):
		log.Debug("connection closed by server")
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Debug("connection idle timeout")
			return
		}
		log.Debug("connection read error", "error", err)
	}
}

// writeReply buffers reply; it reaches the socket on the next flush, or
// right away when it does not fit in the buffer.
func (c *Conn) writeReply(reply Reply) error {
	c.out = AppendReply(c.out[:0], reply)
	if len(c.out) > c.bw.Available() {
		if err := c.armWrite(); err != nil {
			return err
		}
	}
	_, err := c.bw.Write(c.out)
	return err
}

// metricName keeps the command label bounded to known commands.
func (s *Server) metricName(name string) string {
	if _, ok := s.handler.commands[name]; ok {
		return name
	}
	return "unknown"
}

// protocolDetail strips the package prefix from a framing error.
func protocolDetail(err error) string {
	msg := err.Error()
	for _, prefix := range []string{ErrProtocol.Error() + ": ", ErrLimitExceeded.Error() + ": "} {
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			return rest
		}
	}
	return msg
}
