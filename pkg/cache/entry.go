package cache

import (
	"net/http"
	"time"
)

// CacheEntry represents a cached endpoint response.
type CacheEntry struct {
	// Data is the response body (verified JSON).
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// Headers are the response headers.
	Headers http.Header `json:"headers"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this response.
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
