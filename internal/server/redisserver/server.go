package redisserver

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
	"github.com/yndnr/respkv-go/pkg/resp"
)

var (
	// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown.
	ErrServerClosed = errors.New("redisserver: server closed")

	// ErrAlreadyServing is returned when Serve is called a second time.
	ErrAlreadyServing = errors.New("redisserver: already serving")
)

// Config holds the Redis server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// IdleTimeout bounds the wait for a new request. Zero disables it.
	IdleTimeout time.Duration
	// ReadTimeout bounds the wait for the rest of a partially received
	// request. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one reply. Zero disables it.
	WriteTimeout time.Duration
	// MaxConnections closes connections accepted beyond this many open
	// ones. Zero means unlimited.
	MaxConnections int
	// RateLimit is the number of commands per second allowed per client
	// IP. Commands over the limit wait; they are never rejected.
	// Zero disables rate limiting.
	RateLimit int
	// RateBurst is the rate limiter bucket size (default: RateLimit).
	RateBurst int
	// MaxBufferLen is the largest incomplete request a connection may
	// buffer before it is closed. Zero means resp.MaxBulkLen plus headers.
	MaxBufferLen int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func (c *Config) maxBuffered() int {
	if c.MaxBufferLen > 0 {
		return c.MaxBufferLen
	}
	return resp.MaxBulkLen + resp.MaxLineLen
}

// Server accepts client connections and serves each one in its own
// goroutine against a shared store.
type Server struct {
	cfg      *Config
	handler  *CommandHandler
	logger   logger.Logger
	metrics  *metric.Registry
	limiters *clientLimiters

	idMu    sync.Mutex
	entropy io.Reader

	mu       sync.Mutex
	ln       net.Listener
	conns    map[*Conn]struct{}
	shutdown atomic.Bool
	// ready is closed once Serve accepts or Shutdown runs, whichever is first.
	ready     chan struct{}
	readyOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a server for store. log and metrics may be nil.
func New(cfg *Config, store KV, log logger.Logger, metrics *metric.Registry) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		cfg:     cfg,
		handler: NewCommandHandler(store),
		logger:  log.With("component", "redisserver"),
		metrics: metrics,
		entropy: ulid.Monotonic(rand.Reader, 0),
		conns:   make(map[*Conn]struct{}),
		ready:   make(chan struct{}),
	}
	if cfg.RateLimit > 0 {
		s.limiters = newClientLimiters(cfg.RateLimit, cfg.RateBurst)
	}
	return s
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled or Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. Cancelling ctx stops accepting new
// connections; use Shutdown to also close the open ones.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.shutdown.Load() {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	if s.ln != nil {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.ln = ln
	s.markReady()
	s.mu.Unlock()

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return ErrServerClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			backoff = nextBackoff(backoff)
			s.logger.Error("accept failed, retrying", "error", err, "backoff", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		c := newConn(s.nextID(), nc)
		if !s.track(c) {
			s.logger.Warn("connection limit reached, closing connection",
				"remote", nc.RemoteAddr().String(),
				"max_connections", s.cfg.MaxConnections)
			if s.metrics != nil {
				s.metrics.ConnectionsRejected.Inc()
			}
			_ = c.Close()
			continue
		}

		go s.serveConn(ctx, c)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}

// Addr returns the address Serve is listening on, or nil if Serve has not
// been called or refused its listener. Wait on Listening first when Serve
// runs in another goroutine.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Listening returns a channel that is closed once Serve is accepting
// connections or the server has been shut down.
func (s *Server) Listening() <-chan struct{} {
	return s.ready
}

func (s *Server) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Shutdown stops accepting connections, closes every open connection and
// waits for their goroutines to finish or for ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown.Store(true)
	s.markReady()
	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

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

	s.logger.Info("redis server stopped")
	return firstErr
}

// Ready reports whether Serve is accepting connections.
func (s *Server) Ready() bool {
	select {
	case <-s.ready:
		return !s.shutdown.Load()
	default:
		return false
	}
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) nextID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// track registers c; it reports false when c must be refused.
func (s *Server) track(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown.Load() {
		return false
	}
	if s.cfg.MaxConnections > 0 && len(s.conns) >= s.cfg.MaxConnections {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)

	if s.limiters != nil {
		c.limiter = s.limiters.acquire(c.ip)
	}
	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
	}
	return true
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	if s.limiters != nil {
		s.limiters.release(c.ip)
	}
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
	}
	s.wg.Done()
}

// serveConn runs the request loop for one connection until the peer
// closes, a protocol error occurs, or the server shuts down. Requests are
// answered strictly in arrival order.
func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer s.untrack(c)
	defer c.Close()

	log := logger.L(logger.WithConnID(logger.WithLogger(ctx, s.logger), c.ID())).
		With("remote", c.RemoteAddr().String())
	log.Debug("connection opened")

	for {
		v, err := c.ReadValue(s.cfg.IdleTimeout, s.cfg.ReadTimeout, s.cfg.maxBuffered())
		s.reportBytes(c)
		if err != nil {
			s.logReadError(log, c, err)
			return
		}

		cmd, args, err := resp.ToCommand(v)
		if err != nil {
			log.Warn("closing connection on non-command frame", "error", err)
			s.countProtocolError("invalid_command")
			return
		}

		if err := waitToken(ctx, c.limiter); err != nil {
			log.Debug("rate limit wait aborted", "error", err)
			return
		}

		start := time.Now()
		reply := s.handler.Dispatch(cmd, args)
		if s.metrics != nil {
			s.metrics.ObserveCommand(cmd.String(), time.Since(start))
		}
		log.Debug("command", "command", cmd.String(), "args", len(args))

		err = c.WriteValue(reply, s.cfg.WriteTimeout)
		s.reportBytes(c)
		if err != nil {
			log.Debug("write failed", "error", err)
			return
		}
	}
}

func (s *Server) logReadError(log logger.Logger, c *Conn, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		log.Debug("connection closed by peer")
	case errors.Is(err, ErrTruncatedFrame):
		log.Debug("connection closed mid-request", "buffered", c.Buffered())
	case errors.Is(err, resp.ErrLimitExceeded):
		log.Warn("protocol limit exceeded", "error", err)
		s.countProtocolError("limit_exceeded")
	case errors.Is(err, resp.ErrProtocol):
		log.Warn("protocol error", "error", err)
		s.countProtocolError("malformed")
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("connection timed out")
	case s.shutdown.Load():
		log.Debug("connection closed by shutdown")
	default:
		log.Debug("connection read error", "error", err)
	}
}

func (s *Server) countProtocolError(reason string) {
	if s.metrics != nil {
		s.metrics.ProtocolErrors.WithLabelValues(reason).Inc()
	}
}

func (s *Server) reportBytes(c *Conn) {
	read, written := c.takeCounters()
	if s.metrics == nil {
		return
	}
	if read > 0 {
		s.metrics.BytesRead.Add(float64(read))
	}
	if written > 0 {
		s.metrics.BytesWritten.Add(float64(written))
	}
}
