package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/client"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config wires the capabilities of an Executor.
type Config[T any] struct {
	// Factory builds the request for an item (required).
	Factory RequestFactory[T]

	// Adapter consumes successful responses (required).
	Adapter ResponseAdapter[T]

	// FailureHandler observes dropped entries (optional).
	FailureHandler FailureHandler[T]

	// Client is the template for the per-run HTTP client.
	// MaxConnections is replaced by the effective worker count of each run.
	Client client.Config

	// Logger overrides the global logger (optional).
	Logger *zerolog.Logger
}

// Executor runs batches of items through a factory, the HTTP client and an adapter.
// An Executor holds no per-run state and may run several batches concurrently.
type Executor[T any] struct {
	factory      RequestFactory[T]
	adapter      ResponseAdapter[T]
	failures     FailureHandler[T]
	clientConfig client.Config
	logger       zerolog.Logger
}

// New creates an executor.
func New[T any](cfg Config[T]) (*Executor[T], error) {
	if cfg.Factory == nil {
		return nil, errors.New("batch: request factory is required")
	}
	if cfg.Adapter == nil {
		return nil, errors.New("batch: response adapter is required")
	}

	failures := cfg.FailureHandler
	if failures == nil {
		failures = noopFailureHandler[T]{}
	}

	base := log.Logger
	if cfg.Logger != nil {
		base = *cfg.Logger
	}

	return &Executor[T]{
		factory:      cfg.Factory,
		adapter:      cfg.Adapter,
		failures:     failures,
		clientConfig: cfg.Client,
		logger:       base.With().Str("component", "batch").Logger(),
	}, nil
}

// Run processes every item of items and returns once each index has either
// been delivered to the adapter or dropped.
//
// n caps the number of main workers together with settings.MaxConnection;
// n <= 0 leaves only the settings cap. Run returns an error for invalid
// settings, a client that cannot be created, or cancellation of ctx. Entry
// level failures are reported to the FailureHandler instead.
func (e *Executor[T]) Run(ctx context.Context, items iter.Seq[T], n int, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	workers := settings.EffectiveWorkers(n)
	logger := e.logger.With().Str("run_id", uuid.NewString()).Logger()

	clientCfg := e.clientConfig
	clientCfg.MaxConnections = workers
	httpClient, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}
	defer httpClient.Close()

	mainQueue := NewQueue[Entry[T]](settings.MainQueueSize)
	dlq := NewQueue[Entry[T]](0)
	stats := &runStats{}

	logger.Info().
		Int("workers", workers).
		Int("dlq_workers", settings.DLQConsumerNum).
		Int("main_queue_size", settings.MainQueueSize).
		Dur("dlq_sleep", settings.DLQSleep).
		Int("max_attempts", settings.MaxAttempts).
		Msg("Batch run started")
	start := time.Now()

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	group, groupCtx := errgroup.WithContext(workerCtx)

	newWorker := func(pool string, id int, source *Queue[Entry[T]]) *worker[T] {
		return &worker[T]{
			pool:        pool,
			source:      source,
			dlq:         dlq,
			client:      httpClient,
			factory:     e.factory,
			adapter:     e.adapter,
			failures:    e.failures,
			settings:    settings,
			stats:       stats,
			logger:      logger.With().Str("pool", pool).Int("worker_id", id).Logger(),
			sourceDepth: queueDepth.WithLabelValues(pool),
			dlqDepth:    queueDepth.WithLabelValues(poolDLQ),
			active:      activeWorkers.WithLabelValues(pool),
		}
	}

	for id := range workers {
		w := newWorker(poolMain, id, mainQueue)
		group.Go(func() error { return w.run(groupCtx) })
	}
	for id := range settings.DLQConsumerNum {
		w := newWorker(poolDLQ, id, dlq)
		group.Go(func() error { return w.run(groupCtx) })
	}

	produced, runErr := e.drain(ctx, logger, items, mainQueue, dlq)

	cancelWorkers()
	// Workers only ever stop with a context error.
	_ = group.Wait()

	queueDepth.WithLabelValues(poolMain).Set(0)
	queueDepth.WithLabelValues(poolDLQ).Set(0)

	elapsed := time.Since(start)
	summary := func(ev *zerolog.Event) *zerolog.Event {
		return ev.
			Int("produced", produced).
			Int64("delivered", stats.delivered.Load()).
			Int64("dropped", stats.dropped.Load()).
			Int64("requeued", stats.requeued.Load()).
			Dur("duration", elapsed)
	}

	if runErr != nil {
		summary(logger.Warn().Err(runErr)).Msg("Batch run cancelled")
		return runErr
	}

	runDuration.Observe(elapsed.Seconds())
	summary(logger.Info()).Msg("Batch run finished")
	return nil
}

// RunSlice runs items with n = len(items).
func (e *Executor[T]) RunSlice(ctx context.Context, items []T, settings Settings) error {
	return e.Run(ctx, slices.Values(items), len(items), settings)
}

// drain feeds the main queue and waits until both queues are fully processed.
func (e *Executor[T]) drain(ctx context.Context, logger zerolog.Logger, items iter.Seq[T], mainQueue, dlq *Queue[Entry[T]]) (int, error) {
	mainDepth := queueDepth.WithLabelValues(poolMain)

	produced := 0
	for item := range items {
		if err := mainQueue.Put(ctx, Entry[T]{Index: produced, Item: item}); err != nil {
			return produced, err
		}
		produced++
		mainDepth.Set(float64(mainQueue.Len()))
	}
	logger.Debug().Int("produced", produced).Msg("All items enqueued")

	if err := mainQueue.Join(ctx); err != nil {
		return produced, err
	}
	logger.Debug().Int("dlq_depth", dlq.Len()).Msg("Main queue drained")

	if err := dlq.Join(ctx); err != nil {
		return produced, err
	}
	return produced, nil
}
