package stress

import "errors"

var (
	// ErrConfig is returned for an invalid [Config].
	ErrConfig = errors.New("invalid stress config")
	// ErrDeadline is returned when a run does not finish within its timeout.
	ErrDeadline = errors.New("run exceeded deadline")
	// ErrInvariant is returned when a run observes a broken invariant.
	ErrInvariant = errors.New("invariant violated")
)
