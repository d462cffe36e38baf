// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainmarket_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainmarket_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Reconciliation outcome metrics. Partial outcomes carry the step the
	// flow stopped at so operators can alert on stuck sagas.
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainmarket_reconciliations_total",
			Help: "Total number of purchase reconciliation attempts by outcome",
		},
		[]string{"outcome", "step"},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainmarket_cache_hits_total",
			Help: "Product detail cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordReconciliation(outcome, step string) {
	ReconciliationsTotal.WithLabelValues(outcome, step).Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues("hit").Inc()
	} else {
		CacheHitsTotal.WithLabelValues("miss").Inc()
	}
}
