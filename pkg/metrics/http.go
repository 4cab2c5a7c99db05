package metrics

import "time"

// HTTPMetrics records request-level measurements for the API server.
//
// A nil HTTPMetrics is valid and means metrics are disabled; use the
// package-level helpers to stay nil-safe at call sites.
type HTTPMetrics interface {
	// ObserveRequest records one completed request.
	ObserveRequest(method, route string, status int, duration time.Duration)

	// IncInflight / DecInflight track currently executing requests.
	IncInflight()
	DecInflight()
}

// NewHTTPMetrics creates a Prometheus-backed HTTPMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewHTTPMetrics() HTTPMetrics {
	if !IsEnabled() || newPrometheusHTTPMetrics == nil {
		return nil
	}
	return newPrometheusHTTPMetrics()
}

// newPrometheusHTTPMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusHTTPMetrics func() HTTPMetrics

// RegisterHTTPMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterHTTPMetricsConstructor(constructor func() HTTPMetrics) {
	newPrometheusHTTPMetrics = constructor
}

// ObserveRequest records a completed request on a possibly-nil instance.
func ObserveRequest(m HTTPMetrics, method, route string, status int, duration time.Duration) {
	if m != nil {
		m.ObserveRequest(method, route, status, duration)
	}
}
