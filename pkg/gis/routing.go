package gis

import (
	"net/http"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/batch"
)

const (
	routingPath = "/gis/v1/routing/direct"

	// RoutingTimeout bounds a single routing attempt.
	RoutingTimeout = 60 * time.Second
)

type coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routingRequest struct {
	From            coordinate `json:"from"`
	To              coordinate `json:"to"`
	VehicleProfile  string     `json:"vehicleProfile"`
	Provider        string     `json:"provider"`
	RequiredResults []string   `json:"requiredResults"`
}

// RoutingFactory builds direct routing requests for routes.
type RoutingFactory struct {
	url      string
	apiKey   string
	provider string
	profile  string
}

// NewRoutingFactory creates a factory for the routing endpoint of apiURL.
func NewRoutingFactory(apiURL, apiKey, provider, profile string) *RoutingFactory {
	return &RoutingFactory{
		url:      endpoint(apiURL, routingPath),
		apiKey:   apiKey,
		provider: provider,
		profile:  profile,
	}
}

// NewRequest implements batch.RequestFactory.
func (f *RoutingFactory) NewRequest(route Route) (*batch.Request, error) {
	return &batch.Request{
		Method: http.MethodPost,
		URL:    f.url,
		Header: authHeader(f.apiKey),
		JSON: routingRequest{
			From:            coordinate{Latitude: route.From.Lat, Longitude: route.From.Lon},
			To:              coordinate{Latitude: route.To.Lat, Longitude: route.To.Lon},
			VehicleProfile:  f.profile,
			Provider:        f.provider,
			RequiredResults: []string{"Distance", "Duration"},
		},
		Timeout: RoutingTimeout,
	}, nil
}

// RoutingHandler receives routing outcomes.
type RoutingHandler interface {
	// OnSuccess reports the distance in meters and duration in seconds.
	OnSuccess(index int, route Route, distance, duration float64)
	OnFail(index int, route Route)
}

// RoutingAdapter turns routing responses into RoutingHandler calls.
// Any response without both distance and duration counts as a failed route.
type RoutingAdapter struct {
	Handler RoutingHandler
}

type routingResponse struct {
	Distance *struct {
		Distance *float64 `json:"distance"`
	} `json:"distance"`
	Duration *struct {
		Duration *float64 `json:"duration"`
	} `json:"duration"`
}

// OnResponse implements batch.ResponseAdapter.
func (a *RoutingAdapter) OnResponse(index int, route Route, resp *batch.Response) error {
	var body routingResponse
	if err := resp.Decode(&body); err != nil ||
		body.Distance == nil || body.Distance.Distance == nil ||
		body.Duration == nil || body.Duration.Duration == nil {
		a.Handler.OnFail(index, route)
		return nil
	}

	a.Handler.OnSuccess(index, route, *body.Distance.Distance, *body.Duration.Duration)
	return nil
}

var (
	_ batch.RequestFactory[Route]  = (*RoutingFactory)(nil)
	_ batch.ResponseAdapter[Route] = (*RoutingAdapter)(nil)
)
