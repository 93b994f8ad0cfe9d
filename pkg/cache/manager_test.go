package cache

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis and skips the test when none is running.
// Integration tests start a container instead (see manager_integration_test.go).
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func testKey(path string) CacheKey {
	return CacheKey{
		Method: http.MethodGet,
		URL:    "https://api.example.com" + path,
		Query:  url.Values{"provider": {"ptv"}},
	}
}

func TestNewManager(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	manager := NewManager(client, 0)
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
	if manager.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", manager.TTL(), DefaultTTL)
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil, time.Minute)
}

func TestManager_SetAndGet(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := testKey("/v1/geocode")

	entry := NewEntry(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, []byte(`{"results":[]}`), time.Minute)
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("Data = %s, want %s", got.Data, entry.Data)
	}
	if got.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", got.StatusCode)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)

	_, err := manager.Get(context.Background(), testKey("/missing"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Set_SkipsExpired(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := testKey("/expired")

	entry := &CacheEntry{Data: []byte(`{}`), Expires: time.Now().Add(-time.Hour)}
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)
	ctx := context.Background()
	key := testKey("/delete")

	if err := manager.Set(ctx, key, NewEntry(http.StatusOK, http.Header{}, []byte(`{}`), time.Minute)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Get_InvalidEntry(t *testing.T) {
	client := setupTestRedis(t)
	manager := NewManager(client, time.Minute)
	ctx := context.Background()
	key := testKey("/corrupt")

	if err := client.Set(ctx, key.String(), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry, got %v", err)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	manager := NewManager(setupTestRedis(t), time.Minute)

	if err := manager.Set(context.Background(), testKey("/nil"), nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}
