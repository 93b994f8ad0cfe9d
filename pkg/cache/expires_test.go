package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestNewEntry_Expiry(t *testing.T) {
	tests := []struct {
		name     string
		header   http.Header
		fallback time.Duration
		wantMin  time.Duration
		wantMax  time.Duration
	}{
		{
			name:     "no caching headers uses fallback",
			header:   http.Header{},
			fallback: 10 * time.Minute,
			wantMin:  9*time.Minute + 59*time.Second,
			wantMax:  10 * time.Minute,
		},
		{
			name:     "zero fallback uses default",
			header:   http.Header{},
			fallback: 0,
			wantMin:  DefaultTTL - time.Second,
			wantMax:  DefaultTTL,
		},
		{
			name:     "max-age wins over expires",
			header:   http.Header{"Cache-Control": {"public, max-age=60"}, "Expires": {time.Now().Add(time.Hour).Format(http.TimeFormat)}},
			fallback: 10 * time.Minute,
			wantMin:  59 * time.Second,
			wantMax:  60 * time.Second,
		},
		{
			name:     "expires header",
			header:   http.Header{"Expires": {time.Now().Add(30 * time.Minute).Format(http.TimeFormat)}},
			fallback: time.Minute,
			wantMin:  28 * time.Minute,
			wantMax:  30 * time.Minute,
		},
		{
			name:     "expires in the past",
			header:   http.Header{"Expires": {time.Now().Add(-time.Hour).Format(http.TimeFormat)}},
			fallback: time.Minute,
			wantMin:  0,
			wantMax:  0,
		},
		{
			name:     "no-store",
			header:   http.Header{"Cache-Control": {"no-store"}},
			fallback: time.Minute,
			wantMin:  0,
			wantMax:  0,
		},
		{
			name:     "unparseable expires uses fallback",
			header:   http.Header{"Expires": {"tomorrow-ish"}},
			fallback: time.Minute,
			wantMin:  59 * time.Second,
			wantMax:  time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := NewEntry(http.StatusOK, tt.header, []byte(`{}`), tt.fallback)
			got := entry.TTL()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestNewEntry_CopiesHeader(t *testing.T) {
	header := http.Header{"Content-Type": {"application/json"}}
	entry := NewEntry(http.StatusOK, header, []byte(`{"ok":true}`), time.Minute)

	header.Set("Content-Type", "text/plain")

	if got := entry.Headers.Get("Content-Type"); got != "application/json" {
		t.Errorf("entry header changed with source: %q", got)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", entry.StatusCode)
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}
}

func TestCacheEntry_IsExpired(t *testing.T) {
	fresh := &CacheEntry{Expires: time.Now().Add(time.Hour)}
	if fresh.IsExpired() {
		t.Error("fresh entry reported as expired")
	}

	stale := &CacheEntry{Expires: time.Now().Add(-time.Second)}
	if !stale.IsExpired() {
		t.Error("stale entry not reported as expired")
	}
	if stale.TTL() != 0 {
		t.Errorf("stale TTL = %v, want 0", stale.TTL())
	}
}
