// Package server carries shell sessions over stdio or TCP. Every session has
// its own working directory and pending confirmation; all of them share one
// store and run one command at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Neev4n/flashshell/pkg/shell"
)

// Session is what a SessionFactory gets to build a shell from.
type Session struct {
	ID     string
	In     io.Reader
	Out    io.Writer
	Logger *zap.Logger
	// Lock must be passed to shell.WithLock so commands from different
	// sessions never interleave.
	Lock sync.Locker
}

type SessionFactory func(sess Session) *shell.Shell

type Server struct {
	newShell SessionFactory
	logger   *zap.Logger

	// serializes command execution across sessions
	exec sync.Mutex

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

func New(factory SessionFactory, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		newShell: factory,
		logger:   logger,
		conns:    make(map[net.Conn]struct{}),
	}
}

// ServeStdio runs a single session over in and out until in is exhausted.
func (s *Server) ServeStdio(in io.Reader, out io.Writer) error {
	return s.runSession(in, out, zap.String("transport", "stdio"))
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, one session each, until ctx is done or
// accepting fails. Open connections are closed on the way out.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		_ = ln.Close()
		s.closeConns()
		return nil
	})

	g.Go(func() error {
		// a dead listener takes the open sessions down with it
		defer cancel()

		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}

			s.track(conn)
			g.Go(func() error {
				defer s.untrack(conn)
				defer func() { _ = conn.Close() }()

				err := s.runSession(conn, conn,
					zap.String("transport", "tcp"),
					zap.String("remote", conn.RemoteAddr().String()))
				if err != nil && gctx.Err() == nil {
					s.logger.Debug("session ended with error", zap.Error(err))
				}
				return nil
			})
		}
	})

	return g.Wait()
}

func (s *Server) runSession(in io.Reader, out io.Writer, fields ...zap.Field) error {
	id := uuid.NewString()
	logger := s.logger.With(append(fields, zap.String("session", id))...)

	sh := s.newShell(Session{
		ID:     id,
		In:     in,
		Out:    out,
		Logger: logger,
		Lock:   &s.exec,
	})

	logger.Info("session started")
	err := sh.Run()
	logger.Info("session ended")

	return err
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// accepted while shutting down
		_ = conn.Close()
		return
	}
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for conn := range s.conns {
		_ = conn.Close()
	}
}
