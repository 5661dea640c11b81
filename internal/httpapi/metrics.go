package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus instruments on a private registry,
// so multiple servers (and tests) never collide on registration.
type Metrics struct {
	registry       *prometheus.Registry
	walksStarted   prometheus.Counter
	walkAdvances   *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers the server's instruments.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		walksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "convo_walks_started_total",
			Help: "Total number of walks started over HTTP.",
		}),
		walkAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "convo_walk_advances_total",
			Help: "Total advance attempts, labeled by result.",
		}, []string{"result"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "convo_http_request_duration_seconds",
			Help: "HTTP request latency, labeled by route.",
		}, []string{"route"}),
	}
	m.registry.MustRegister(m.walksStarted, m.walkAdvances, m.requestSeconds)
	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument times every request by chi route pattern.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.requestSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
