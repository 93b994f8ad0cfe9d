// Package client provides the pooled HTTP client used by batch runs.
//
// A Client is created per run, limited to a fixed number of concurrent
// connections per host, and shared by every worker of that run. It turns a
// Request descriptor into one HTTP attempt and reports the outcome either as
// a JSON Response or as a classified *HTTPError.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for request execution.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "httpbatch_requests_total",
		Help: "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "httpbatch_request_duration_seconds",
		Help:    "HTTP request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"method"})

	requestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "httpbatch_request_errors_total",
		Help: "Total failed HTTP requests by error class",
	}, []string{"class"})
)

// Client performs request descriptors over a bounded connection pool.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// MaxConnections caps concurrent connections per host.
	MaxConnections int

	// UserAgent is sent unless the descriptor sets its own.
	UserAgent string

	// DefaultTimeout applies to descriptors without a Timeout.
	DefaultTimeout time.Duration

	// Cache enables the Redis response cache (optional).
	Cache *cache.Manager

	// Transport replaces the pooled transport (optional, for tests and proxies).
	Transport http.RoundTripper
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		MaxConnections: 100,
		UserAgent:      userAgent,
		DefaultTimeout: 30 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.MaxConnections <= 0 {
		return nil, fmt.Errorf("max_connections must be > 0 (got %d)", cfg.MaxConnections)
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}

	logger := log.With().Str("component", "http-client").Logger()

	c := &Client{
		cache:  cfg.Cache,
		config: cfg,
		logger: logger,
	}

	roundTripper := cfg.Transport
	if roundTripper == nil {
		// One idle connection per worker, never more than MaxConnections open per host.
		c.transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          cfg.MaxConnections,
			MaxIdleConnsPerHost:   cfg.MaxConnections,
			MaxConnsPerHost:       cfg.MaxConnections,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		roundTripper = c.transport
	}

	// Per-attempt deadlines come from the request context, not from http.Client.Timeout.
	c.httpClient = &http.Client{Transport: roundTripper}

	return c, nil
}

// Do performs one attempt of req.
// On success the body is valid JSON. Every failure is an *HTTPError. Cancellation
// of ctx surfaces as a network-class error, so callers check ctx.Err() first.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, &HTTPError{Class: ErrorClassInvalid, Message: "nil request", Err: ErrInvalidRequest}
	}

	body, bodyHash, err := req.encodeBody()
	if err != nil {
		requestErrorsTotal.WithLabelValues(string(ErrorClassInvalid)).Inc()
		return nil, &HTTPError{Class: ErrorClassInvalid, Message: "encode body", Err: err}
	}

	cacheKey := cache.CacheKey{
		Method:   req.Method,
		URL:      req.URL,
		Query:    req.Query,
		BodyHash: bodyHash,
	}
	if cacheKey.Method == "" {
		cacheKey.Method = http.MethodGet
	}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().Str("key", cacheKey.String()).Msg("Cache hit")
			return &Response{
				StatusCode: entry.StatusCode,
				Header:     entry.Headers,
				Body:       entry.Data,
				Cached:     true,
			}, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("key", cacheKey.String()).Msg("Cache get error")
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.DefaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := req.build(attemptCtx, body)
	if err != nil {
		requestErrorsTotal.WithLabelValues(string(ErrorClassInvalid)).Inc()
		return nil, &HTTPError{Class: ErrorClassInvalid, Message: "build request", Err: err}
	}
	if httpReq.Header.Get("User-Agent") == "" && c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	method := httpReq.Method
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		requestErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, &HTTPError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	requestsTotal.WithLabelValues(method, status).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection goes back to the pool.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		class := ClassifyStatus(resp.StatusCode)
		if class == "" {
			// 1xx/3xx that the transport did not resolve
			class = ErrorClassClient
		}
		requestErrorsTotal.WithLabelValues(string(class)).Inc()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Class: class, Message: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		requestErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Message: "read response body", Err: err}
	}

	if !json.Valid(data) {
		requestErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Class: ErrorClassDecode, Message: "response body is not JSON"}
	}

	if c.cache != nil {
		entry := cache.NewEntry(resp.StatusCode, resp.Header, data, c.cache.TTL())
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("key", cacheKey.String()).Msg("Failed to cache response")
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Close releases pooled connections held by the client.
func (c *Client) Close() error {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	} else {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// MaxConnections returns the connection cap of this client.
func (c *Client) MaxConnections() int {
	return c.config.MaxConnections
}
