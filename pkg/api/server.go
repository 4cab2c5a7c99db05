// Package api provides the LivePaste HTTP server: the room API, the
// static client routes, and the health endpoint.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/livepaste/livepaste/internal/logger"
)

// Server wraps the HTTP server with lifecycle management.
//
// The server supports graceful shutdown with a configurable timeout.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates the API HTTP server in a stopped state; call Start
// to begin serving.
//
// Defaults are applied here so the server works when constructed
// directly in tests, not only through config loading.
func NewServer(config Config, deps Dependencies) *Server {
	config.ApplyDefaults()
	if deps.MaxBodyBytes == 0 {
		deps.MaxBodyBytes = config.MaxBodySize.Int64()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      NewRouter(deps),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start serves requests and blocks until the context is cancelled or
// the listener fails. Cancellation triggers graceful shutdown bounded
// by the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", s.server.Addr)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// The cancelled ctx would abort the shutdown immediately; grace
		// comes from a fresh timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.KeyError, err.Error())
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.config.Port
}
