// Prometheus metrics owned by the HTTP server, used by handlers and
// middleware.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values shared across registrations.
const (
	// labelHandler is the "handler" label value used to partition metrics by
	// the logical endpoint name rather than the raw URL path.
	labelHandler = "handler"
)

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// coachRequestsTotal counts completed /api/coach requests, partitioned by
	// outcome: "ok", "invalid_output", or "error".
	coachRequestsTotal *prometheus.CounterVec

	// coachDurationSeconds records the wall-clock duration of each /api/coach
	// request across all three pipeline stages.
	coachDurationSeconds *prometheus.HistogramVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, path pattern, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default,
// keeping unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		coachRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coach",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Total number of /api/coach requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		coachDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coach",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of /api/coach requests across all pipeline stages.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coach",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coach",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}
