package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks response cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpbatch_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses tracks response cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpbatch_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheStoredBytes tracks bytes written to the cache.
	CacheStoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "httpbatch_cache_stored_bytes_total",
			Help: "Total number of bytes written to the response cache",
		},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpbatch_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
