//go:build integration

package client

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/httpbatch/internal/testutil"
	"github.com/Sternrassler/httpbatch/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

// redirectTransport sends requests for a public host to the mock endpoint.
type redirectTransport struct {
	mock *testutil.MockEndpoint
}

func (rt *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(rt.mock.URL(), "http://")
	return http.DefaultTransport.RoundTrip(req)
}

func newCachedClient(t *testing.T, mock *testutil.MockEndpoint) *Client {
	t.Helper()
	cfg := DefaultConfig("httpbatch-test/1.0")
	cfg.MaxConnections = 2
	cfg.Cache = cache.NewManager(setupRedis(t), time.Minute)
	cfg.Transport = &redirectTransport{mock: mock}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// TestCacheFlow covers Cache Miss -> Request -> Cache Store -> Cache Hit.
func TestCacheFlow(t *testing.T) {
	mock := testutil.NewMockEndpoint()
	defer mock.Close()
	mock.SetResponse("/v0/item/1.json", testutil.OK(`{"id":1}`))

	c := newCachedClient(t, mock)
	ctx := context.Background()
	req := &Request{URL: "https://hacker-news.firebaseio.com/v0/item/1.json"}

	first, err := c.Do(ctx, req)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if first.Cached {
		t.Error("Request 1 should not be served from cache")
	}

	second, err := c.Do(ctx, req)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if !second.Cached {
		t.Error("Request 2 should be served from cache")
	}
	if string(second.Body) != `{"id":1}` {
		t.Errorf("cached body = %s", second.Body)
	}
	if mock.RequestCount("/v0/item/1.json") != 1 {
		t.Errorf("upstream requests = %d, want 1", mock.RequestCount("/v0/item/1.json"))
	}
}

// TestCacheKeyIncludesBody checks that POSTs with different bodies do not share entries.
func TestCacheKeyIncludesBody(t *testing.T) {
	mock := testutil.NewMockEndpoint()
	defer mock.Close()

	c := newCachedClient(t, mock)
	ctx := context.Background()

	for _, profile := range []string{"Truck_40t", "Car", "Truck_40t"} {
		_, err := c.Do(ctx, &Request{
			Method: http.MethodPost,
			URL:    "https://gis.example.com/gis/v1/routing/direct",
			JSON:   map[string]string{"vehicleProfile": profile},
		})
		if err != nil {
			t.Fatalf("Do(%s): %v", profile, err)
		}
	}

	if got := mock.RequestCount("/gis/v1/routing/direct"); got != 2 {
		t.Errorf("upstream requests = %d, want 2", got)
	}
}

// TestErrorsAreNotCached checks that failed attempts always reach the upstream.
func TestErrorsAreNotCached(t *testing.T) {
	mock := testutil.NewMockEndpoint()
	defer mock.Close()
	mock.SetSequence("/flaky", testutil.Status(http.StatusServiceUnavailable), testutil.OK(`{"ok":true}`))

	c := newCachedClient(t, mock)
	ctx := context.Background()
	req := &Request{URL: "https://api.example.com/flaky"}

	if _, err := c.Do(ctx, req); !IsRetryable(err) {
		t.Fatalf("Request 1: expected retryable error, got %v", err)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if resp.Cached {
		t.Error("Request 2 should come from the upstream")
	}
	if mock.RequestCount("/flaky") != 2 {
		t.Errorf("upstream requests = %d, want 2", mock.RequestCount("/flaky"))
	}
}
