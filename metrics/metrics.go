// Package metrics provides Prometheus metrics for the Guardian AI adapter.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates Prometheus metrics for the adapter.
type Metrics struct {
	registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimitWait   prometheus.Histogram
	ErrorsTotal     *prometheus.CounterVec
	BreakerTrips    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with a custom registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_ai_requests_total",
				Help: "Total number of generate calls by path and status",
			},
			[]string{"path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guardian_ai_request_duration_seconds",
				Help:    "Duration of generate calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		RateLimitWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guardian_ai_rate_limit_wait_seconds",
				Help:    "Time spent waiting on the client-side rate limiter",
				Buckets: prometheus.DefBuckets,
			},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_ai_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"type"},
		),
		BreakerTrips: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "guardian_ai_breaker_trips_total",
				Help: "Total number of times the backend circuit breaker has opened",
			},
		),
	}

	// Register default Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize label combinations so the series exist from startup
	m.RequestsTotal.WithLabelValues("generate", "ok").Add(0)
	m.RequestsTotal.WithLabelValues("generate_sync", "ok").Add(0)
	m.RequestDuration.WithLabelValues("generate").Observe(0)

	return m
}

// Handler returns a handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: false,
	})
}
