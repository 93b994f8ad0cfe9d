package gis

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/batch"
)

const (
	geocodingPath = "/gis/v1/geocode"

	// GeocodingTimeout bounds a single geocoding attempt.
	GeocodingTimeout = 10 * time.Second
)

// GeocodingFactory builds geocoding requests for free-text addresses.
type GeocodingFactory struct {
	url      string
	apiKey   string
	provider string
}

// NewGeocodingFactory creates a factory for the geocoding endpoint of apiURL.
func NewGeocodingFactory(apiURL, apiKey, provider string) *GeocodingFactory {
	return &GeocodingFactory{
		url:      endpoint(apiURL, geocodingPath),
		apiKey:   apiKey,
		provider: provider,
	}
}

// NewRequest implements batch.RequestFactory.
func (f *GeocodingFactory) NewRequest(address string) (*batch.Request, error) {
	return &batch.Request{
		Method: http.MethodGet,
		URL:    f.url,
		Header: authHeader(f.apiKey),
		Query: url.Values{
			"address":    {address},
			"provider":   {f.provider},
			"structured": {"false"},
		},
		Timeout: GeocodingTimeout,
	}, nil
}

// GeocodingHandler receives geocoding outcomes.
type GeocodingHandler interface {
	OnSuccess(index int, address string, point GeoPoint)
	// OnFail is called when the provider found no match for address.
	OnFail(index int, address string)
}

// GeocodingAdapter turns geocoding responses into GeocodingHandler calls.
type GeocodingAdapter struct {
	Handler GeocodingHandler
}

type geocodingResponse struct {
	Results *[]struct {
		CenterPoint *coordinate `json:"centerPoint"`
	} `json:"results"`
}

// OnResponse implements batch.ResponseAdapter. The first result wins.
// A response without a results list is an error, an empty list is a miss.
func (a *GeocodingAdapter) OnResponse(index int, address string, resp *batch.Response) error {
	var body geocodingResponse
	if err := resp.Decode(&body); err != nil {
		return err
	}
	if body.Results == nil {
		return errors.New("geocoding response has no results")
	}

	results := *body.Results
	if len(results) == 0 {
		a.Handler.OnFail(index, address)
		return nil
	}
	center := results[0].CenterPoint
	if center == nil {
		return errors.New("geocoding result has no centerPoint")
	}

	a.Handler.OnSuccess(index, address, GeoPoint{Lat: center.Latitude, Lon: center.Longitude})
	return nil
}

var (
	_ batch.RequestFactory[string]  = (*GeocodingFactory)(nil)
	_ batch.ResponseAdapter[string] = (*GeocodingAdapter)(nil)
)
