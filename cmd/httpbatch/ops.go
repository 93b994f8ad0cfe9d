package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/httpbatch/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const opsShutdownTimeout = 5 * time.Second

// opsServer exposes health probes and metrics while a job runs.
type opsServer struct {
	echo   *echo.Echo
	ready  *atomic.Bool
	logger zerolog.Logger
}

func newOpsServer(logger zerolog.Logger) *opsServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &opsServer{
		echo:   e,
		ready:  atomic.NewBool(false),
		logger: logger.With().Str("component", "ops").Logger(),
	}

	e.GET("/healthz", s.handleLiveness)
	e.GET("/readyz", s.handleReadiness)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return s
}

// handleLiveness always answers 200 while the process is up.
func (s *opsServer) handleLiveness(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// handleReadiness answers 200 while a batch run is in progress.
func (s *opsServer) handleReadiness(c echo.Context) error {
	if s.ready.Load() {
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusServiceUnavailable)
}

func (s *opsServer) start(addr string) {
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Ops server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Ops server failed")
		}
	}()
}

func (s *opsServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), opsShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Ops server shutdown error")
	}
}
