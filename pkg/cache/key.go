package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces all cache keys in Redis.
const KeyPrefix = "httpbatch"

// CacheKey identifies one request descriptor. Two descriptors with the same
// method, URL, query and body hash are assumed to return the same payload.
type CacheKey struct {
	// Method is the HTTP method (upper case).
	Method string

	// URL is the request URL. Its query string is merged with Query.
	URL string

	// Query holds the query parameters.
	Query url.Values

	// BodyHash is a digest of the encoded request body, empty when there is none.
	BodyHash string
}

// String generates a deterministic cache key string.
//
// Example:
//
//	httpbatch:GET:api.example.com/gis/v1/geocode:address=Budapest:provider=ptv
func (k CacheKey) String() string {
	parts := []string{KeyPrefix, strings.ToUpper(k.Method)}

	target := k.URL
	query := url.Values{}
	if u, err := url.Parse(k.URL); err == nil && u.Host != "" {
		target = u.Host + u.EscapedPath()
		for key, values := range u.Query() {
			query[key] = append(query[key], values...)
		}
	}
	for key, values := range k.Query {
		query[key] = append(query[key], values...)
	}
	if target = strings.TrimRight(target, "/"); target != "" {
		parts = append(parts, target)
	}

	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			values := query[key]
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(values, ",")))
		}
	}

	if k.BodyHash != "" {
		parts = append(parts, "body="+k.BodyHash)
	}

	return strings.Join(parts, ":")
}
