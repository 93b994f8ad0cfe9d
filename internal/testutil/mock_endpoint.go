// Package testutil provides a scriptable HTTP endpoint for batch tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines one scripted response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockEndpoint is a configurable HTTP server that replays scripted responses per path.
type MockEndpoint struct {
	server    *httptest.Server
	mu        sync.Mutex
	scripts   map[string][]MockResponse
	handlers  map[string]http.HandlerFunc
	requests  map[string]int
	total     int
	inFlight  int
	maxFlight int
}

// NewMockEndpoint starts a new mock endpoint. Unscripted paths answer 200 {"status":"ok"}.
func NewMockEndpoint() *MockEndpoint {
	m := &MockEndpoint{
		scripts:  make(map[string][]MockResponse),
		handlers: make(map[string]http.HandlerFunc),
		requests: make(map[string]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the server base URL.
func (m *MockEndpoint) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockEndpoint) Close() {
	m.server.Close()
}

// SetSequence scripts the responses for path in order. The last response repeats.
func (m *MockEndpoint) SetSequence(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[path] = responses
}

// SetResponse scripts a single repeating response for path.
func (m *MockEndpoint) SetResponse(path string, resp MockResponse) {
	m.SetSequence(path, resp)
}

// SetHandler installs a custom handler for path.
func (m *MockEndpoint) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// RequestCount returns the number of requests received for path.
func (m *MockEndpoint) RequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests received for all paths.
func (m *MockEndpoint) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// MaxInFlight returns the highest number of concurrently served requests.
func (m *MockEndpoint) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxFlight
}

func (m *MockEndpoint) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	n := m.requests[r.URL.Path]
	m.requests[r.URL.Path]++
	m.total++
	m.inFlight++
	if m.inFlight > m.maxFlight {
		m.maxFlight = m.inFlight
	}
	handler, hasHandler := m.handlers[r.URL.Path]
	script := m.scripts[r.URL.Path]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if hasHandler {
		handler(w, r)
		return
	}

	if len(script) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
		return
	}

	resp := script[min(n, len(script)-1)]
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// OK creates a 200 response with a JSON body.
func OK(body string) MockResponse {
	return MockResponse{StatusCode: http.StatusOK, Body: body}
}

// Status creates a response with the given status and a small JSON error body.
func Status(code int) MockResponse {
	return MockResponse{StatusCode: code, Body: `{"error":"` + http.StatusText(code) + `"}`}
}
