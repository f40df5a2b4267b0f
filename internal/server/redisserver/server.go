package redisserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/resp"
)

// Config holds the RESP server configuration.
type Config struct {
	// Addr is the plaintext listen address. Empty disables it.
	Addr string
	// TLSAddr is the TLS listen address. Empty disables it.
	TLSAddr string
	// TLSConfig is required if TLSAddr is set.
	TLSConfig *tls.Config

	// ReadTimeout bounds how long a partially received request may take.
	ReadTimeout time.Duration
	// WriteTimeout bounds flushing one batch of replies.
	WriteTimeout time.Duration
	// IdleTimeout closes connections idle between requests.
	IdleTimeout time.Duration

	// RateLimit is commands per second per client IP. 0 disables it.
	RateLimit float64
	// RateBurst is the bucket size. 0 means RateLimit rounded down.
	RateBurst int

	// MaxClients caps concurrent connections. 0 means unlimited.
	MaxClients int

	// Limits bounds decoded frames.
	Limits resp.Limits
	// MaxBuffer is the most undecoded bytes held per connection.
	MaxBuffer int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  5 * time.Minute,
		Limits:       resp.DefaultLimits(),
		MaxBuffer:    1 << 30,
	}
}

func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	out := *c
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.IdleTimeout <= 0 {
		out.IdleTimeout = d.IdleTimeout
	}
	if out.MaxBuffer <= 0 {
		out.MaxBuffer = d.MaxBuffer
	}
	return &out
}

// Server represents the RESP server.
type Server struct {
	cfg      *Config
	handler  *CommandHandler
	decoder  *resp.Decoder
	logger   logger.Logger
	metrics  *metric.Registry
	limiters *rateLimiterRegistry

	mu        sync.Mutex
	listeners []net.Listener
	conns     map[*Conn]struct{}

	started time.Time
	running atomic.Bool
	wg      sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics records connection, command and protocol metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a new RESP server over store.
func New(cfg *Config, store *memory.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:    cfg.withDefaults(),
		logger: logger.Nop(),
		conns:  make(map[*Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.decoder = resp.NewDecoder(resp.WithLimits(s.cfg.Limits))
	s.handler = NewCommandHandler(store, s, s.metrics)
	if s.cfg.RateLimit > 0 {
		s.limiters = newRateLimiterRegistry(s.cfg.RateLimit, s.cfg.RateBurst)
	}

	return s
}

// Start binds the configured listeners and serves them in the background.
// It returns once the listeners are bound.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Addr == "" && s.cfg.TLSAddr == "" {
		s.logger.Info("redis server disabled (no listen address)")
		return nil
	}

	var lns []net.Listener
	closeAll := func() {
		for _, ln := range lns {
			_ = ln.Close()
		}
	}

	if s.cfg.Addr != "" {
		ln, err := net.Listen("tcp", s.cfg.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		lns = append(lns, ln)
	}
	if s.cfg.TLSAddr != "" {
		if s.cfg.TLSConfig == nil {
			closeAll()
			return errors.New("tls listener requires a TLS config")
		}
		ln, err := tls.Listen("tcp", s.cfg.TLSAddr, s.cfg.TLSConfig)
		if err != nil {
			closeAll()
			return fmt.Errorf("listen tls %s: %w", s.cfg.TLSAddr, err)
		}
		lns = append(lns, ln)
	}

	s.mu.Lock()
	s.listeners = lns
	s.mu.Unlock()
	s.started = time.Now()
	s.running.Store(true)

	for _, ln := range lns {
		s.logger.Info("redis server listening", "address", ln.Addr().String())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
				s.logger.Error("redis accept loop failed", "address", ln.Addr().String(), "error", err)
			}
		}()
	}

	return nil
}

// Addr returns the address of the first bound listener, or nil before
// Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listeners) == 0 {
		return nil
	}
	return s.listeners[0].Addr()
}

// Running reports whether the listeners are bound and not shut down.
func (s *Server) Running() bool {
	return s.running.Load()
}

// ClientCount returns the number of open connections.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Uptime returns the time since Start.
func (s *Server) Uptime() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// Shutdown closes the listeners and every open connection, then waits for
// connection goroutines to finish or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error

	s.mu.Lock()
	for _, ln := range s.listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) && firstErr == nil {
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

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		var written prometheus.Counter
		if s.metrics != nil {
			written = s.metrics.BytesWritten
		}
		c := newConn(nc, written)
		if reason := s.register(c); reason != "" {
			s.reject(c, reason)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.unregister(c)
			s.serveConn(ctx, c)
		}()
	}
}

// register tracks c. It returns the rejection reason if c may not be
// served.
func (s *Server) register(c *Conn) string {
	s.mu.Lock()
	switch {
	case !s.running.Load():
		s.mu.Unlock()
		return "shutdown"
	case s.cfg.MaxClients > 0 && len(s.conns) >= s.cfg.MaxClients:
		s.mu.Unlock()
		return "max_clients"
	}
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	if s.limiters != nil {
		c.limiter = s.limiters.acquire(c.ip)
	}
	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
	}
	return ""
}

func (s *Server) unregister(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	if s.limiters != nil {
		s.limiters.release(c.ip)
	}
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
	}
}

// reject answers a refused connection with an error and closes it.
func (s *Server) reject(c *Conn, reason string) {
	s.logger.Warn("connection rejected", "remote_addr", c.RemoteAddr().String(), "reason", reason)
	if s.metrics != nil {
		s.metrics.ConnectionsRejected.WithLabelValues(reason).Inc()
	}
	_ = c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	reply := errorReply(errMaxClients)
	if reason == "shutdown" {
		reply = resp.SimpleError(PrefixErr + " server is shutting down")
	}
	_ = c.writeReply(reply)
	_ = c.bw.Flush()
	_ = c.Close()
}
