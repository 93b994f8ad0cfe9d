package client

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport, timeout and protocol errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body is not JSON.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassInvalid represents a request descriptor that cannot be sent.
	ErrorClassInvalid ErrorClass = "invalid"
)

// RetryStatusCodes are the HTTP statuses treated as transient.
var RetryStatusCodes = []int{
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// ErrInvalidRequest is wrapped by errors for unusable request descriptors.
var ErrInvalidRequest = errors.New("invalid request")

// HTTPError describes a failed request attempt.
type HTTPError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("http %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("http %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *HTTPError) Retryable() bool {
	switch e.Class {
	case ErrorClassNetwork:
		return true
	case ErrorClassServer:
		return slices.Contains(RetryStatusCodes, e.StatusCode)
	default:
		// 4xx, undecodable bodies and bad descriptors fail the same way every time
		return false
	}
}

// IsRetryable reports whether err is a transient request failure.
func IsRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	return false
}

// ClassOf returns the error class of err, or "" when err is not an *HTTPError.
func ClassOf(err error) ErrorClass {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Class
	}
	return ""
}

// ClassifyStatus maps an HTTP status code to an error class.
// Returns "" for statuses that are not errors.
func ClassifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
