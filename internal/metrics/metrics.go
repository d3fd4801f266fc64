// Package metrics holds the Prometheus collectors of the HTTP server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-dynform/pkg/form"
)

// Metrics owns a private registry so several servers (and tests) can coexist
// in one process.
type Metrics struct {
	registry    *prometheus.Registry
	Requests    *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	Submissions *prometheus.CounterVec
	Reloads     *prometheus.CounterVec
}

// New registers the dynform collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dynform_http_requests_total",
				Help: "Number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dynform_http_latency_seconds",
				Help:    "HTTP latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dynform_submissions_total",
				Help: "Form submissions by gate result",
			},
			[]string{"form", "result", "reason"},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dynform_schema_reloads_total",
				Help: "Schema hot reloads by result",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.Requests,
		m.Latency,
		m.Submissions,
		m.Reloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := httpsnoop.CaptureMetrics(next, w, r)
		path := routePattern(r)
		m.Requests.WithLabelValues(r.Method, path, strconv.Itoa(captured.Code)).Inc()
		m.Latency.WithLabelValues(r.Method, path).Observe(captured.Duration.Seconds())
	})
}

// ObserveOutcome counts one gate result.
func (m *Metrics) ObserveOutcome(formID string, outcome form.Outcome) {
	result := "rejected"
	if outcome.Accepted {
		result = "accepted"
	}
	reason := string(outcome.Reason)
	if reason == "" {
		reason = "none"
	}
	m.Submissions.WithLabelValues(formID, result, reason).Inc()
}

// ObserveReload counts a schema reload attempt.
func (m *Metrics) ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
