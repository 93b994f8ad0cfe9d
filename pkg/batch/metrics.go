package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for entriesTotal.
const (
	outcomeDelivered = "delivered"
	outcomeRequeued  = "requeued"
)

// Prometheus metrics for batch runs.
var (
	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "httpbatch_queue_depth",
		Help: "Entries waiting in a run queue",
	}, []string{"queue"}) // "main", "dlq"

	entriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "httpbatch_entries_total",
		Help: "Entry outcomes by kind (delivered, requeued, or a failure reason)",
	}, []string{"outcome"})

	dlqRequeuesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "httpbatch_dlq_requeues_total",
		Help: "Total number of entries moved to the dead-letter queue",
	})

	activeWorkers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "httpbatch_active_workers",
		Help: "Workers currently processing an entry",
	}, []string{"pool"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "httpbatch_run_duration_seconds",
		Help:    "Wall time of completed batch runs",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
	})
)
