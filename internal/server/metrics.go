package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed at /metrics, grounded
// on internal/metrics' per-concern collector layout, reduced to the
// counters a diffing service actually accumulates.
type Metrics struct {
	DiffDuration   *prometheus.HistogramVec
	PlanStatements *prometheus.CounterVec
	RequestsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a Metrics instance with all collectors registered
// against a fresh registry, so repeated test construction never trips
// Prometheus's default-registry duplicate-registration panic.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.DiffDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mysqldiff_diff_duration_seconds",
			Help:    "Time spent computing a diff or refs plan.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
	m.PlanStatements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mysqldiff_plan_statements_total",
			Help: "Number of plan statements emitted, by priority bucket.",
		},
		[]string{"priority"},
	)
	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mysqldiff_requests_total",
			Help: "Total number of HTTP requests, by path and status.",
		},
		[]string{"path", "status"},
	)

	m.registry.MustRegister(m.DiffDuration, m.PlanStatements, m.RequestsTotal)
	return m
}

// Handler exposes the registry's collectors over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
