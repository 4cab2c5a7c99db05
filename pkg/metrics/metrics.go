// Package metrics provides the metrics registry and the instrumentation
// interfaces consumed by the HTTP layer and the background workers.
//
// The interfaces live here while their Prometheus implementations live in
// pkg/metrics/prometheus, wired up through constructor registration. This
// keeps prometheus/client_golang out of the dependency graph of every
// package that merely reports a measurement, and makes a nil metrics
// value mean "disabled, zero overhead".
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry. Until this is
// called every constructor in this package returns nil and
// instrumentation is a no-op.
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
