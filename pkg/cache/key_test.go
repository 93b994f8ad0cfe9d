package cache

import (
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "plain GET",
			key:  CacheKey{Method: "get", URL: "https://api.example.com/v0/item/1.json"},
			want: "httpbatch:GET:api.example.com/v0/item/1.json",
		},
		{
			name: "trailing slash trimmed",
			key:  CacheKey{Method: "GET", URL: "https://api.example.com/gis/v1/geocode/"},
			want: "httpbatch:GET:api.example.com/gis/v1/geocode",
		},
		{
			name: "query params sorted",
			key: CacheKey{
				Method: "GET",
				URL:    "https://api.example.com/gis/v1/geocode",
				Query:  url.Values{"provider": {"ptv"}, "address": {"Budapest"}},
			},
			want: "httpbatch:GET:api.example.com/gis/v1/geocode:address=Budapest:provider=ptv",
		},
		{
			name: "query taken from url when not given",
			key:  CacheKey{Method: "GET", URL: "https://api.example.com/search?b=2&a=1"},
			want: "httpbatch:GET:api.example.com/search:a=1:b=2",
		},
		{
			name: "url query merged with explicit query",
			key: CacheKey{
				Method: "GET",
				URL:    "https://api.example.com/gis/v1/geocode?structured=false",
				Query:  url.Values{"address": {"Budapest"}},
			},
			want: "httpbatch:GET:api.example.com/gis/v1/geocode:address=Budapest:structured=false",
		},
		{
			name: "multi-valued query",
			key: CacheKey{
				Method: "GET",
				URL:    "https://api.example.com/x",
				Query:  url.Values{"id": {"3", "1"}},
			},
			want: "httpbatch:GET:api.example.com/x:id=1,3",
		},
		{
			name: "body hash",
			key:  CacheKey{Method: "POST", URL: "https://api.example.com/gis/v1/routing/direct", BodyHash: "abc"},
			want: "httpbatch:POST:api.example.com/gis/v1/routing/direct:body=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	key := CacheKey{
		Method: "GET",
		URL:    "https://api.example.com/a",
		Query:  url.Values{"z": {"1"}, "y": {"2"}, "x": {"3"}},
	}

	first := key.String()
	for i := 0; i < 20; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q vs %q", got, first)
		}
	}
}
