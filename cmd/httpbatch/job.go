package main

import (
	"context"
	"fmt"
	"iter"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/httpbatch/pkg/batch"
	"github.com/Sternrassler/httpbatch/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// job is one batch run started by a subcommand.
type job[T any] struct {
	name     string
	factory  batch.RequestFactory[T]
	adapter  batch.ResponseAdapter[T]
	failures batch.FailureHandler[T]
	items    iter.Seq[T]
	n        int
}

// runJob executes j until it drains or SIGINT/SIGTERM cancels it.
func runJob[T any](ctx context.Context, a *app, j job[T]) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := a.logger.With().Str("job", j.name).Logger()

	clientCfg := a.cfg.ClientConfig()
	if a.cfg.Cache.Enabled {
		rdb := redis.NewClient(a.cfg.RedisOptions())
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", a.cfg.Cache.RedisAddr, err)
		}
		clientCfg.Cache = cache.NewManager(rdb, a.cfg.Cache.TTL)
		logger.Info().Str("redis_addr", a.cfg.Cache.RedisAddr).Dur("ttl", a.cfg.Cache.TTL).Msg("Response cache enabled")
	}

	if a.cfg.Ops.Listen != "" {
		ops := newOpsServer(logger)
		ops.start(a.cfg.Ops.Listen)
		defer ops.shutdown()

		ops.ready.Store(true)
		defer ops.ready.Store(false)
	}

	exec, err := batch.New(batch.Config[T]{
		Factory:        j.factory,
		Adapter:        j.adapter,
		FailureHandler: j.failures,
		Client:         clientCfg,
		Logger:         &a.logger,
	})
	if err != nil {
		return err
	}

	if err := exec.Run(ctx, j.items, j.n, a.cfg.Batch); err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	return nil
}
