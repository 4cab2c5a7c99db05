// Package prometheus provides the Prometheus implementations of the
// instrumentation interfaces in pkg/metrics, registered through
// constructor indirection during package initialization.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/livepaste/livepaste/pkg/metrics"
)

func init() {
	metrics.RegisterHTTPMetricsConstructor(newHTTPMetrics)
	metrics.RegisterRoomMetricsConstructor(newRoomMetrics)
}

// httpMetrics is the Prometheus implementation of metrics.HTTPMetrics.
type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func newHTTPMetrics() metrics.HTTPMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &httpMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "livepaste_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "livepaste_http_request_duration_seconds",
				Help: "HTTP request duration in seconds by method and route",
				Buckets: []float64{
					0.001, // 1ms - version polls
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms - delta reads
					0.5,   // 500ms
					1,     // 1s - large sync chunks
					5,     // 5s
				},
			},
			[]string{"method", "route"},
		),
		inflight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "livepaste_http_requests_inflight",
				Help: "Number of HTTP requests currently being served",
			},
		),
	}
}

func (m *httpMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *httpMetrics) IncInflight() {
	m.inflight.Inc()
}

func (m *httpMetrics) DecInflight() {
	m.inflight.Dec()
}
