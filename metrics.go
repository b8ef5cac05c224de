package simplepg

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const outcomeSuccess = "success"

// metrics holds per-instance collectors on a private registry.
type metrics struct {
	registry *prometheus.Registry
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simplepg",
			Name:      "queries_total",
			Help:      "Executed queries by outcome (success, policy, connection, query).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "simplepg",
			Name:      "query_duration_seconds",
			Help:      "Wall-clock time from call entry to result or error.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.queries, m.duration)
	return m
}

func (m *metrics) observe(outcome string, d time.Duration) {
	m.queries.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// MetricsHandler serves this instance's query metrics in the Prometheus text format.
func (p *SimplePg) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.metrics.registry, promhttp.HandlerOpts{})
}
