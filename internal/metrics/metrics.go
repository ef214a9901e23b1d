package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsReported tracks classified errors that reached a logger, by kind and event
	ErrorsReported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authkit_errors_total",
			Help: "Total number of classified errors reported",
		},
		[]string{"kind", "event"},
	)

	// RetryAttempts tracks retries scheduled per error kind
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authkit_retry_attempts_total",
			Help: "Total number of retry attempts scheduled",
		},
		[]string{"kind"},
	)

	// RetryDelay tracks the wait chosen before each retry
	RetryDelay = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authkit_retry_delay_seconds",
			Help:    "Delay before a retry attempt in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 4, 8, 16, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// Presentations tracks errors surfaced to the user per presentation mode
	Presentations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authkit_presentations_total",
			Help: "Total number of errors presented to the user",
		},
		[]string{"mode", "kind"},
	)

	// APIRequests tracks backend calls per endpoint and outcome
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authkit_api_requests_total",
			Help: "Total number of auth backend requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// APILatency tracks backend call latency
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authkit_api_latency_seconds",
			Help:    "Auth backend request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// CooldownRejections tracks requests refused locally while a rate-limit cooldown is active
	CooldownRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authkit_cooldown_rejections_total",
			Help: "Total number of requests rejected by an active cooldown",
		},
		[]string{"endpoint"},
	)

	// BackendHealthy is 1 when the last health probe succeeded
	BackendHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authkit_backend_healthy",
			Help: "Whether the last auth backend health probe succeeded",
		},
	)

	// DBConnectionPoolUsage tracks the share of open connections in the session store pool
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authkit_db_connection_pool_usage_percent",
			Help: "Percentage of the database connection pool in use",
		},
	)
)
