package debugserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 3 * time.Second

// Server serves the debug router on one address. It satisfies the process
// lifecycle's Service contract.
type Server struct {
	addr    string
	handler http.Handler
	logger  *zap.Logger

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	stopped  bool
}

// NewServer returns a Server for handler on addr. Nothing listens until Start.
//
// Precondition: handler and logger must be non-nil.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{addr: addr, handler: handler, logger: logger}
}

// Listen binds the listen address without serving, so callers can learn the
// bound address before Start.
//
// Postcondition: Addr reports the bound address on success.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil || s.stopped {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("debugserver: listening on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address after Listen, or the configured address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start serves until Stop. It binds first if Listen was not called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.stopped {
		if s.listener != nil {
			_ = s.listener.Close()
		}
		s.mu.Unlock()
		return nil
	}
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv, ln := s.srv, s.listener
	s.mu.Unlock()

	s.logger.Info("debug server listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("debugserver: serving: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() {
	s.mu.Lock()
	s.stopped = true
	srv, ln := s.srv, s.listener
	s.mu.Unlock()

	if srv == nil {
		if ln != nil {
			_ = ln.Close()
		}
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("debug server shutdown", zap.Error(err))
	}
}
