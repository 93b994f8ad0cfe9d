package batch

import (
	"github.com/Sternrassler/httpbatch/pkg/client"
)

// Request is the descriptor a factory builds for one attempt.
type Request = client.Request

// Response is the successful response handed to adapters.
type Response = client.Response

// RequestFactory converts one item into a request descriptor.
// It is called again for every retry of the same item.
type RequestFactory[T any] interface {
	NewRequest(item T) (*Request, error)
}

// ResponseAdapter consumes a successful response. It is called at most once per index.
type ResponseAdapter[T any] interface {
	OnResponse(index int, item T, resp *Response) error
}

// FailureHandler observes every dropped entry.
type FailureHandler[T any] interface {
	OnFailure(f Failure[T])
}

// RequestFactoryFunc adapts a function to RequestFactory.
type RequestFactoryFunc[T any] func(item T) (*Request, error)

// NewRequest calls f(item).
func (f RequestFactoryFunc[T]) NewRequest(item T) (*Request, error) {
	return f(item)
}

// ResponseAdapterFunc adapts a function to ResponseAdapter.
type ResponseAdapterFunc[T any] func(index int, item T, resp *Response) error

// OnResponse calls f(index, item, resp).
func (f ResponseAdapterFunc[T]) OnResponse(index int, item T, resp *Response) error {
	return f(index, item, resp)
}

// FailureHandlerFunc adapts a function to FailureHandler.
type FailureHandlerFunc[T any] func(f Failure[T])

// OnFailure calls fn(f).
func (fn FailureHandlerFunc[T]) OnFailure(f Failure[T]) {
	fn(f)
}

type noopFailureHandler[T any] struct{}

func (noopFailureHandler[T]) OnFailure(Failure[T]) {}
