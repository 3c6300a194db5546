// Package server runs the rental line protocol over TCP: a Listener accepting
// connections and one handler goroutine per connection, each owning its own
// session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/rental-system/internal/api/metrics"
	"github.com/99minutos/rental-system/internal/session"
)

// ErrServerClosed is returned by Serve after Shutdown or context cancellation.
var ErrServerClosed = errors.New("server: closed")

// DefaultMaxLineBytes bounds a request line when Config.MaxLineBytes is unset.
const DefaultMaxLineBytes = 64 * 1024

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Config controls the protocol listener.
type Config struct {
	Addr         string // host:port, ":0" picks a free port
	MaxLineBytes int
}

// Server accepts protocol connections and tracks them until they close.
type Server struct {
	cfg  Config
	deps session.Deps
	log  zerolog.Logger

	mu       sync.Mutex
	ln       net.Listener
	conns    map[net.Conn]struct{}
	closing  bool
	handlers sync.WaitGroup
}

// New creates a server. deps.Log is ignored; each connection gets a child of
// log carrying its connection id.
func New(cfg Config, deps session.Deps, log zerolog.Logger) *Server {
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Server{
		cfg:   cfg,
		deps:  deps,
		log:   log,
		conns: make(map[net.Conn]struct{}),
	}
}

// Listen binds the configured address. A bind failure is fatal for the
// caller; nothing is retried.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		_ = ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ListenAndServe binds and then serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the accept loop on the bound listener. Transient accept errors
// are logged and retried with a growing delay. It returns ErrServerClosed once
// the listener is closed by Shutdown or by cancelling ctx; open connections
// are closed at that point too, and Shutdown waits for their handlers.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server: Serve called before Listen")
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.close()
		case <-stop:
		}
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("protocol server listening")

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			metrics.AcceptErrorsTotal.Inc()
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.log.Warn().Err(err).Dur("retry_in", delay).Msg("accept failed")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ErrServerClosed
			}
			continue
		}
		delay = 0

		if !s.track(conn) {
			_ = conn.Close()
			return ErrServerClosed
		}
		metrics.ConnectionsAcceptedTotal.Inc()
		go s.handle(ctx, conn)
	}
}

// Shutdown closes the listener and every open connection, then waits for the
// connection handlers to return or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.close()

	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("protocol server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

func (s *Server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return
	}
	s.closing = true
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Error().Err(err).Msg("failed to close listener")
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// track registers conn and reserves a handler slot. It reports false once the
// server is closing.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.handlers.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, conn)
	s.handlers.Done()
}
