package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UserStorePoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "user_store_pool_connections",
			Help: "Postgres pool connections by state (acquired, idle, total, max)",
		},
		[]string{"state"},
	)

	UserStoreQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_store_query_duration_seconds",
			Help:    "Duration of credential store queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "table"},
	)

	UserStoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_store_query_errors_total",
			Help: "Credential store query failures",
		},
		[]string{"operation", "table", "error_type"},
	)

	UserStoreRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_store_retries_total",
			Help: "Retries of transient credential store failures, by outcome",
		},
		[]string{"outcome"},
	)
)
