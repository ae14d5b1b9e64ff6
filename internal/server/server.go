package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type Stopper interface {
	Stop()
}

// Server owns the listener and everything that has to be drained on shutdown:
// HTTP first, then the workers, then the stores.
type Server struct {
	httpServer *http.Server
	workers    Stopper
	closers    []func() error
	logger     *logger_i.Logger
}

func New(listenAddr string, handler http.Handler, workers Stopper, closers ...func() error) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		workers: workers,
		closers: closers,
		logger:  logger_i.NewLogger("Server"),
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("Server is listening at", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Server is shutting down")
	case err := <-serveErr:
		if err != nil {
			s.logger.Error("Server crashed", "error", err, "addr", ln.Addr().String())
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.httpServer.SetKeepAlivesEnabled(false)
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Could not shutdown gracefully", "error", err)
		errs = append(errs, err)
	}

	done := make(chan struct{})
	go func() {
		if s.workers != nil {
			s.workers.Stop()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Workers did not stop in time")
		errs = append(errs, ctx.Err())
	}

	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	s.logger.Info("Server stopped")
	return errors.Join(errs...)
}
