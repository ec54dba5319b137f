package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	RetrievalStrategyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ghinote",
			Name:      "retrieval_strategy_duration_seconds",
			Help:      "Per-strategy retrieval duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"strategy"},
	)

	RetrievalFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghinote",
			Name:      "retrieval_fallback_total",
			Help:      "Times a strategy degraded to its fallback path",
		},
		[]string{"strategy"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ghinote",
			Name:      "queries_total",
			Help:      "Questions answered, labeled by classified query type",
		},
		[]string{"query_type"},
	)
)

// RegisterRetrievalMetrics registers retrieval collectors with the default
// registry. Called explicitly from the composition root, no init().
func RegisterRetrievalMetrics() {
	prometheus.MustRegister(
		RetrievalStrategyDuration,
		RetrievalFallbackTotal,
		QueriesTotal,
	)
}
