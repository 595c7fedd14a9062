package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total number of auth requests",
		},
		[]string{"method", "path"},
	)

	AuthRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_requests_in_flight",
			Help: "Number of auth requests currently being processed",
		},
	)

	AuthRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_request_duration_seconds",
			Help:    "Duration of auth requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total number of registration attempts by outcome",
		},
		[]string{"result"},
	)

	RegisteredUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registered_users",
			Help: "Number of users registered by this process",
		},
	)

	PasswordHashDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "password_hash_duration_seconds",
			Help:    "Duration of password hashing in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	PasswordHashWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "password_hash_wait_seconds",
			Help:    "Time spent waiting for a free hashing slot in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
)
