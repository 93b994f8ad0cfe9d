// Package gis adapts GIS geocoding and routing APIs to batch runs.
package gis

import (
	"fmt"
	"iter"
	"net/http"
	"strings"
)

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// String formats the point as "lat,lon".
func (p GeoPoint) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lon)
}

// Route is an ordered origin/destination pair.
type Route struct {
	From GeoPoint
	To   GeoPoint
}

// AllPairs yields every ordered pair of points, including a point with itself,
// in row-major order. Index i of the sequence is the route points[i/n] -> points[i%n].
func AllPairs(points []GeoPoint) iter.Seq[Route] {
	return func(yield func(Route) bool) {
		for _, from := range points {
			for _, to := range points {
				if !yield(Route{From: from, To: to}) {
					return
				}
			}
		}
	}
}

// PairIndex maps an AllPairs index back to the positions of its points.
func PairIndex(index, n int) (from, to int) {
	return index / n, index % n
}

// endpoint joins the API base and path. A base without a scheme gets https.
func endpoint(apiURL, path string) string {
	base := strings.TrimRight(apiURL, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + path
}

func authHeader(apiKey string) http.Header {
	return http.Header{
		"Content-Type":  {"application/json"},
		"Authorization": {"Bearer " + apiKey},
	}
}
