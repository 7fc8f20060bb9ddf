package tsync

import (
	"time"
)

// DefaultPollInterval is the fixed delay between generation polls of a
// goroutine waiting in [ThreadSync.FullBarrier].
const DefaultPollInterval = 30 * time.Microsecond

// ThreadSyncConfig defines configurable options for ThreadSync
// initialization.
type ThreadSyncConfig struct {
	// pollInterval is the sleep between generation polls of a waiting
	// worker. Shorter intervals release workers sooner and burn more CPU.
	// If zero or negative, DefaultPollInterval is used.
	pollInterval time.Duration
}

// WithPollInterval sets the delay between generation polls of goroutines
// waiting in FullBarrier.
func WithPollInterval(d time.Duration) func(*ThreadSyncConfig) {
	return func(c *ThreadSyncConfig) {
		c.pollInterval = d
	}
}

func (c *ThreadSyncConfig) interval() time.Duration {
	if c.pollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.pollInterval
}
