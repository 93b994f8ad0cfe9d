// Package cache provides a Redis-backed response cache for batch runs.
//
// Batch inputs often repeat (the same address geocoded twice, the same
// origin/destination pair routed in two jobs). When a cache manager is
// configured, the HTTP client looks up every request descriptor before going
// to the network and stores successful JSON responses afterwards.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, 10*time.Minute)
//
//	key := cache.CacheKey{
//		Method: http.MethodGet,
//		URL:    "https://api.example.com/gis/v1/geocode",
//		Query:  url.Values{"address": {"1118 Budapest"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch and store
//		_ = manager.Set(ctx, key, cache.NewEntry(200, resp.Header, body, manager.TTL()))
//	}
//
// # Expiry
//
// Entry lifetime is taken from Cache-Control max-age, then Expires, then the
// manager TTL. Responses marked no-store or no-cache are never stored.
//
// # Metrics
//
//   - httpbatch_cache_hits_total
//   - httpbatch_cache_misses_total
//   - httpbatch_cache_stored_bytes_total
//   - httpbatch_cache_errors_total{operation}
package cache
