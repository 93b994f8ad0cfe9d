package batch

import (
	"errors"
	"fmt"
	"time"
)

// Default settings.
const (
	DefaultMaxConnection  = 100
	DefaultMainQueueSize  = 200
	DefaultDLQSleep       = 5 * time.Second
	DefaultDLQConsumerNum = 20
)

// ErrInvalidSettings is wrapped by every Settings validation error.
var ErrInvalidSettings = errors.New("invalid batch settings")

// Settings configures one run. It is read once when Run starts.
type Settings struct {
	// MaxConnection caps main-pool workers and pooled connections.
	MaxConnection int `mapstructure:"max_connection"`

	// MainQueueSize is the capacity of the main queue (backpressure bound).
	MainQueueSize int `mapstructure:"main_queue_size"`

	// DLQSleep is how long a worker pauses after moving an entry to the DLQ.
	DLQSleep time.Duration `mapstructure:"dlq_sleep"`

	// DLQConsumerNum is the number of DLQ workers.
	DLQConsumerNum int `mapstructure:"dlq_consumer_num"`

	// MaxAttempts caps HTTP attempts per entry. 0 retries transient failures forever.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// DefaultSettings returns the default run settings.
func DefaultSettings() Settings {
	return Settings{
		MaxConnection:  DefaultMaxConnection,
		MainQueueSize:  DefaultMainQueueSize,
		DLQSleep:       DefaultDLQSleep,
		DLQConsumerNum: DefaultDLQConsumerNum,
	}
}

// Validate checks that a run with these settings can drain.
func (s Settings) Validate() error {
	if s.MaxConnection < 1 {
		return fmt.Errorf("%w: max_connection must be >= 1 (got %d)", ErrInvalidSettings, s.MaxConnection)
	}
	if s.MainQueueSize < 1 {
		return fmt.Errorf("%w: main_queue_size must be >= 1 (got %d)", ErrInvalidSettings, s.MainQueueSize)
	}
	if s.DLQSleep < 0 {
		return fmt.Errorf("%w: dlq_sleep must be >= 0 (got %v)", ErrInvalidSettings, s.DLQSleep)
	}
	if s.DLQConsumerNum < 1 {
		// Without DLQ workers a single transient failure would block the DLQ join forever.
		return fmt.Errorf("%w: dlq_consumer_num must be >= 1 (got %d)", ErrInvalidSettings, s.DLQConsumerNum)
	}
	if s.MaxAttempts < 0 {
		return fmt.Errorf("%w: max_attempts must be >= 0 (got %d)", ErrInvalidSettings, s.MaxAttempts)
	}
	return nil
}

// EffectiveWorkers returns min(MaxConnection, n). n <= 0 means no caller cap.
func (s Settings) EffectiveWorkers(n int) int {
	if n <= 0 {
		return s.MaxConnection
	}
	return min(s.MaxConnection, n)
}
