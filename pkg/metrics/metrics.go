// Package metrics exposes the Prometheus metrics of httpbatch.
// All metrics are defined in their respective packages (batch, client, cache)
// via promauto to keep packages independent; this package serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every httpbatch metric is registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Batch Metrics (pkg/batch):
//   - httpbatch_queue_depth{queue} (Gauge): Entries waiting in the main queue or DLQ
//   - httpbatch_entries_total{outcome} (Counter): Entry outcomes (delivered, requeued,
//     factory, adapter, non_retryable, retries_exhausted)
//   - httpbatch_dlq_requeues_total (Counter): Entries moved to the DLQ
//   - httpbatch_active_workers{pool} (Gauge): Workers currently processing an entry
//   - httpbatch_run_duration_seconds (Histogram): Wall time of completed runs
//
// Request Metrics (pkg/client):
//   - httpbatch_requests_total{method, status} (Counter): Requests by method and HTTP status
//   - httpbatch_request_duration_seconds{method} (Histogram): Request duration by method
//   - httpbatch_request_errors_total{class} (Counter): Failed requests by error class
//
// Cache Metrics (pkg/cache):
//   - httpbatch_cache_hits_total (Counter): Response cache hits
//   - httpbatch_cache_misses_total (Counter): Response cache misses
//   - httpbatch_cache_stored_bytes_total (Counter): Bytes written to the cache
//   - httpbatch_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Retry pressure
//   rate(httpbatch_dlq_requeues_total[5m])
//
//   # Drop rate by reason
//   sum by (outcome) (rate(httpbatch_entries_total{outcome!~"delivered|requeued"}[5m]))
//
//   # Cache Hit Rate
//   sum(rate(httpbatch_cache_hits_total[5m])) /
//   (sum(rate(httpbatch_cache_hits_total[5m])) + sum(rate(httpbatch_cache_misses_total[5m])))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(httpbatch_request_duration_seconds_bucket[5m]))
