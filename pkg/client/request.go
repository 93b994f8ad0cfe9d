package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request is a stateless description of one HTTP call.
// Factories build a fresh Request for every attempt; the client never mutates it.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Query  url.Values

	// JSON is encoded as the request body when non-nil.
	JSON any

	// Timeout bounds the whole attempt. Zero means the client default.
	Timeout time.Duration
}

// Response is a successful (2xx) response with a JSON body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Cached is true when the body came from the response cache.
	Cached bool
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// encodeBody returns the encoded JSON body and its digest.
func (r *Request) encodeBody() ([]byte, string, error) {
	if r.JSON == nil {
		return nil, "", nil
	}
	body, err := json.Marshal(r.JSON)
	if err != nil {
		return nil, "", fmt.Errorf("%w: encode body: %v", ErrInvalidRequest, err)
	}
	sum := sha256.Sum256(body)
	return body, hex.EncodeToString(sum[:]), nil
}

// build creates the *http.Request for one attempt.
func (r *Request) build(ctx context.Context, body []byte) (*http.Request, error) {
	if r.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := url.Parse(r.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %v", ErrInvalidRequest, err)
	}
	if len(r.Query) > 0 {
		query := target.Query()
		for key, values := range r.Query {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		target.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
