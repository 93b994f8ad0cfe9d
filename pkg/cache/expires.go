package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is the fallback TTL when neither the response nor the manager specify one.
const DefaultTTL = 5 * time.Minute

// NewEntry builds a cache entry for a successful response.
// Expiry comes from Cache-Control max-age, then the Expires header, then fallback.
// A "no-store" directive produces an already expired entry, which Set ignores.
func NewEntry(statusCode int, header http.Header, body []byte, fallback time.Duration) *CacheEntry {
	now := time.Now()
	return &CacheEntry{
		Data:       body,
		StatusCode: statusCode,
		Headers:    header.Clone(),
		Expires:    expiresFrom(header, now, fallback),
		CachedAt:   now,
	}
}

func expiresFrom(header http.Header, now time.Time, fallback time.Duration) time.Time {
	if fallback <= 0 {
		fallback = DefaultTTL
	}

	for _, directive := range strings.Split(header.Get("Cache-Control"), ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		switch {
		case directive == "no-store", directive == "no-cache":
			return now
		case strings.HasPrefix(directive, "max-age="):
			if secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil && secs >= 0 {
				return now.Add(time.Duration(secs) * time.Second)
			}
		}
	}

	expiresStr := header.Get("Expires")
	if expiresStr == "" {
		return now.Add(fallback)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return now.Add(fallback)
	}
	if expires.Before(now) {
		return now
	}
	return expires
}
