package batch

// Entry pairs an input item with its position in the input sequence.
// Index is assigned once by the producer and survives every DLQ round trip.
type Entry[T any] struct {
	Index int
	Item  T

	// Attempts counts the HTTP attempts already made for this entry.
	Attempts int
}

// FailureReason says why an entry was dropped.
type FailureReason string

const (
	// ReasonFactory means the request factory could not build a request.
	ReasonFactory FailureReason = "factory"

	// ReasonAdapter means the response adapter failed after a successful response.
	ReasonAdapter FailureReason = "adapter"

	// ReasonNonRetryable means the request failed permanently (4xx, 5xx outside
	// the retry set, undecodable body, unusable descriptor).
	ReasonNonRetryable FailureReason = "non_retryable"

	// ReasonRetriesExhausted means a transient failure hit Settings.MaxAttempts.
	ReasonRetriesExhausted FailureReason = "retries_exhausted"
)

// Failure describes a terminally failed entry.
type Failure[T any] struct {
	Index    int
	Item     T
	Reason   FailureReason
	Attempts int
	Err      error
}
