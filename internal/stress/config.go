package stress

import (
	"fmt"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/llxisdsh/tsync"
)

// Config controls a stress run.
type Config struct {
	// Workers is the number of goroutines taking part in every round.
	Workers int
	// Rounds is the number of coordination rounds each worker goes through.
	Rounds int
	// Timeout bounds the whole run. The primitives have no timeout of their
	// own, so a run that exceeds it is reported as a deadlock.
	Timeout time.Duration
	// PollInterval is the ThreadSync barrier poll delay.
	PollInterval time.Duration
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Workers:      max(2, min(runtime.GOMAXPROCS(0), 8)),
		Rounds:       1000,
		Timeout:      time.Minute,
		PollInterval: tsync.DefaultPollInterval,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var merr error
	if c.Workers < 1 {
		merr = multierror.Append(merr, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.Rounds < 1 {
		merr = multierror.Append(merr, fmt.Errorf("rounds must be positive, got %d", c.Rounds))
	}
	if c.Timeout <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	if c.PollInterval < 0 {
		merr = multierror.Append(merr, fmt.Errorf("poll interval must not be negative, got %v", c.PollInterval))
	}
	if merr != nil {
		return fmt.Errorf("%w: %w", ErrConfig, merr)
	}
	return nil
}
