package gis

import (
	"slices"
	"testing"
)

func TestAllPairs(t *testing.T) {
	points := []GeoPoint{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}}

	routes := slices.Collect(AllPairs(points))
	if len(routes) != 9 {
		t.Fatalf("len = %d, want 9", len(routes))
	}

	for i, r := range routes {
		from, to := PairIndex(i, len(points))
		if r.From != points[from] || r.To != points[to] {
			t.Errorf("route %d = %v -> %v, want %v -> %v", i, r.From, r.To, points[from], points[to])
		}
	}
}

func TestAllPairs_StopsEarly(t *testing.T) {
	points := []GeoPoint{{Lat: 1}, {Lat: 2}, {Lat: 3}}

	n := 0
	for range AllPairs(points) {
		n++
		if n == 4 {
			break
		}
	}
	if n != 4 {
		t.Errorf("iterated %d routes, want 4", n)
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		apiURL string
		want   string
	}{
		{apiURL: "gis.example.com", want: "https://gis.example.com/gis/v1/geocode"},
		{apiURL: "gis.example.com/", want: "https://gis.example.com/gis/v1/geocode"},
		{apiURL: "http://127.0.0.1:8080", want: "http://127.0.0.1:8080/gis/v1/geocode"},
	}

	for _, tt := range tests {
		if got := endpoint(tt.apiURL, geocodingPath); got != tt.want {
			t.Errorf("endpoint(%q) = %q, want %q", tt.apiURL, got, tt.want)
		}
	}
}
