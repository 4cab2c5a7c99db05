package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livepaste/livepaste/internal/logger"
)

// Server exposes the registry on /metrics for Prometheus scrapes.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a scrape server on the given port.
// Returns nil when metrics are disabled.
func NewServer(port int) *Server {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves scrapes until Stop is called. Errors other than a clean
// shutdown are logged, not returned; a broken metrics port must not take
// the API down with it.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logger.KeyError, err.Error())
		}
	}()
	logger.Info("Metrics server listening", "addr", s.httpServer.Addr)
}

// Stop shuts the scrape server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
