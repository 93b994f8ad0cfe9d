//go:build integration

package batch

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/httpbatch/internal/testutil"
	"github.com/Sternrassler/httpbatch/pkg/cache"
	"github.com/Sternrassler/httpbatch/pkg/client"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
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

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	t.Cleanup(func() {
		rdb.Close()
		redisContainer.Terminate(ctx)
	})

	return rdb
}

func TestExecutor_Integration_CachedRerun(t *testing.T) {
	mock := testutil.NewMockEndpoint()
	defer mock.Close()

	items := paths(20)
	clientCfg := client.DefaultConfig("httpbatch-test/1.0")
	clientCfg.Cache = cache.NewManager(setupRedisContainer(t), time.Minute)

	var cachedResponses int
	adapter := ResponseAdapterFunc[string](func(index int, path string, resp *Response) error {
		if resp.Cached {
			cachedResponses++
		}
		return nil
	})

	// One main worker keeps the adapter single-threaded.
	settings := testSettings()
	settings.MaxConnection = 1

	exec := newTestExecutor(t, Config[string]{Factory: pathFactory(mock.URL()), Adapter: adapter, Client: clientCfg})

	if err := exec.RunSlice(context.Background(), items, settings); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if mock.TotalRequests() != len(items) {
		t.Fatalf("first run requests = %d, want %d", mock.TotalRequests(), len(items))
	}
	if cachedResponses != 0 {
		t.Errorf("first run served %d responses from cache", cachedResponses)
	}

	if err := exec.RunSlice(context.Background(), items, settings); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if mock.TotalRequests() != len(items) {
		t.Errorf("second run hit the network: total requests = %d", mock.TotalRequests())
	}
	if cachedResponses != len(items) {
		t.Errorf("cached responses = %d, want %d", cachedResponses, len(items))
	}
}
