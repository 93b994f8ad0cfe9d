// Package logging configures the zerolog logger shared by httpbatch packages.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelTrace logs everything, including per-attempt request flow.
	LevelTrace LogLevel = "trace"

	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"

	// LevelDisabled turns logging off.
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and level.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to Info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: per-entry flow
//   - Entries moved to the DLQ
//   - Cache hits and misses
//   - Worker start/stop
//
// Info: run lifecycle
//   - Batch run started / finished (with summary counters)
//   - Ops server startup/shutdown
//
// Warn: entries dropped or degraded operation
//   - Non-retryable failures (4xx, 5xx outside the retry set, undecodable body)
//   - Retry attempts exhausted
//   - Cache errors (fallback to direct request)
//   - Run cancelled
//
// Error: caller code failures
//   - Request factory errors or panics
//   - Response adapter errors or panics
//   - Configuration errors
//
// Context Fields:
//   - component: package emitting the event (batch, http-client, cache, cli)
//   - run_id: identifier of one Run call
//   - pool: worker pool (main, dlq)
//   - worker_id: worker number within its pool
//   - index: position of the entry in the input sequence
//   - attempt: HTTP attempt number of the entry
//   - error_class: error classification (client, server, network, decode, invalid)
//   - queue_depth, dlq_depth: queue sizes when an entry is requeued
