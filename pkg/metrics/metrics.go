package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExchangeOperations counts bulk import/export runs by operation
	// (export|import_json|import_dump) and result (success|failure|rejected).
	ExchangeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stowage_exchange_operations_total",
			Help: "Total number of bulk import/export operations",
		},
		[]string{"operation", "result"},
	)

	// ExchangeRecords tracks how many rows the last successful bulk load wrote.
	ExchangeRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stowage_exchange_records",
			Help: "Record counts applied by the most recent bulk load",
		},
		[]string{"entity"},
	)

	// UnlockAttempts records access-lock attempts by result (success|failure).
	UnlockAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stowage_unlock_attempts_total",
			Help: "Total number of access unlock attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stowage_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
