package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Pool names used in logs and metrics.
const (
	poolMain = "main"
	poolDLQ  = "dlq"
)

// runStats counts outcomes of a single run for the summary log.
type runStats struct {
	delivered atomic.Int64
	dropped   atomic.Int64
	requeued  atomic.Int64
}

// worker pulls entries from source until its context is cancelled.
// Main-pool workers read the main queue; DLQ workers read the DLQ. Both
// push transient failures into the DLQ.
type worker[T any] struct {
	pool     string
	source   *Queue[Entry[T]]
	dlq      *Queue[Entry[T]]
	client   *client.Client
	factory  RequestFactory[T]
	adapter  ResponseAdapter[T]
	failures FailureHandler[T]
	settings Settings
	stats    *runStats
	logger   zerolog.Logger

	sourceDepth prometheus.Gauge
	dlqDepth    prometheus.Gauge
	active      prometheus.Gauge
}

// run is the worker loop. It only returns when ctx is done.
func (w *worker[T]) run(ctx context.Context) error {
	processed := 0
	defer func() {
		w.logger.Debug().Int("processed", processed).Msg("Worker stopped")
	}()

	for {
		entry, err := w.source.Get(ctx)
		if err != nil {
			return err
		}
		w.sourceDepth.Set(float64(w.source.Len()))

		w.active.Inc()
		err = w.process(ctx, entry)
		w.active.Dec()
		if err != nil {
			return err
		}

		w.source.TaskDone()
		processed++
	}
}

// process runs one attempt for entry. A non-nil error means ctx was cancelled.
func (w *worker[T]) process(ctx context.Context, entry Entry[T]) error {
	logger := w.logger.With().Int("index", entry.Index).Logger()

	req, err := w.newRequest(entry.Item)
	if err != nil {
		logger.Error().Err(err).Msg("Request factory failed, dropping entry")
		w.drop(entry, ReasonFactory, err)
		return nil
	}

	entry.Attempts++
	logger = logger.With().Int("attempt", entry.Attempts).Logger()

	resp, err := w.client.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return w.handleFailure(ctx, logger, entry, err)
	}

	if err := w.deliver(entry, resp); err != nil {
		logger.Error().Err(err).Msg("Response adapter failed")
		w.drop(entry, ReasonAdapter, err)
		return nil
	}

	w.stats.delivered.Inc()
	entriesTotal.WithLabelValues(outcomeDelivered).Inc()
	return nil
}

// handleFailure drops or requeues entry after a failed attempt.
func (w *worker[T]) handleFailure(ctx context.Context, logger zerolog.Logger, entry Entry[T], reqErr error) error {
	class := string(client.ClassOf(reqErr))

	if !client.IsRetryable(reqErr) {
		logger.Warn().Err(reqErr).Str("error_class", class).Msg("Non-retryable failure, dropping entry")
		w.drop(entry, ReasonNonRetryable, reqErr)
		return nil
	}

	if w.settings.MaxAttempts > 0 && entry.Attempts >= w.settings.MaxAttempts {
		logger.Warn().Err(reqErr).
			Str("error_class", class).
			Int("max_attempts", w.settings.MaxAttempts).
			Msg("Retry attempts exhausted, dropping entry")
		w.drop(entry, ReasonRetriesExhausted, reqErr)
		return nil
	}

	logger.Debug().Err(reqErr).
		Str("error_class", class).
		Int("queue_depth", w.source.Len()).
		Int("dlq_depth", w.dlq.Len()).
		Msg("Moving entry to DLQ")

	if err := w.dlq.Put(ctx, entry); err != nil {
		return err
	}
	w.dlqDepth.Set(float64(w.dlq.Len()))
	w.stats.requeued.Inc()
	dlqRequeuesTotal.Inc()
	entriesTotal.WithLabelValues(outcomeRequeued).Inc()

	return w.pause(ctx)
}

// pause blocks for the DLQ delay. The delay throttles this worker only.
func (w *worker[T]) pause(ctx context.Context) error {
	if w.settings.DLQSleep <= 0 {
		return nil
	}
	timer := time.NewTimer(w.settings.DLQSleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *worker[T]) newRequest(item T) (req *Request, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("request factory panic: %v", r)
		}
	}()

	req, err = w.factory.NewRequest(item)
	if err == nil && req == nil {
		err = errors.New("request factory returned nil request")
	}
	return req, err
}

func (w *worker[T]) deliver(entry Entry[T], resp *Response) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("response adapter panic: %v", r)
		}
	}()

	return w.adapter.OnResponse(entry.Index, entry.Item, resp)
}

func (w *worker[T]) drop(entry Entry[T], reason FailureReason, err error) {
	w.stats.dropped.Inc()
	entriesTotal.WithLabelValues(string(reason)).Inc()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().Int("index", entry.Index).Interface("panic", r).Msg("Failure handler panicked")
		}
	}()

	w.failures.OnFailure(Failure[T]{
		Index:    entry.Index,
		Item:     entry.Item,
		Reason:   reason,
		Attempts: entry.Attempts,
		Err:      err,
	})
}
