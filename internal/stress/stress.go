// Package stress drives the tsync primitives from many goroutines and
// checks their invariants: one leader per barrier episode, no generation
// confusion across episodes, event round trips, mutual exclusion, and gate
// liveness.
package stress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/llxisdsh/tsync"
)

// Report summarizes a finished run.
type Report struct {
	Name       string
	Workers    int
	Rounds     int
	Episodes   int
	Leaders    int
	Followers  int
	Violations int
	Elapsed    time.Duration
}

// LogValue implements [slog.LogValuer].
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", r.Name),
		slog.Int("workers", r.Workers),
		slog.Int("rounds", r.Rounds),
		slog.Int("episodes", r.Episodes),
		slog.Int("leaders", r.Leaders),
		slog.Int("followers", r.Followers),
		slog.Int("violations", r.Violations),
		slog.Duration("elapsed", r.Elapsed),
	)
}

// RunFunc executes one kind of stress run.
type RunFunc func(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error)

// Runs maps run names to their implementation.
var Runs = map[string]RunFunc{
	"barrier":  Barrier,
	"event":    Event,
	"spinlock": SpinLock,
	"mutex":    Mutex,
	"gate":     Gate,
}

// Names returns the sorted run names.
func Names() []string {
	names := make([]string, 0, len(Runs))
	for name := range Runs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All executes every run in name order and returns their reports. Failures
// of individual runs are aggregated; a failing run does not stop the rest.
func All(ctx context.Context, cfg Config, logger *slog.Logger) ([]Report, error) {
	var (
		reports []Report
		merr    error
	)
	for _, name := range Names() {
		r, err := Runs[name](ctx, cfg, logger)
		reports = append(reports, r)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", name, err))
		}
	}
	return reports, merr
}

// runBounded runs fn on workers goroutines and waits for them, giving up
// after timeout. Goroutines stuck in a primitive cannot be cancelled and are
// abandoned when the deadline fires.
func runBounded(ctx context.Context, timeout time.Duration, workers int, fn func(id int) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var g errgroup.Group
	for id := range workers {
		g.Go(func() error {
			return fn(id)
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w after %v: %w", ErrDeadline, timeout, ctx.Err())
	}
}

func finish(logger *slog.Logger, r Report, err error) (Report, error) {
	if err != nil {
		logger.Error("run failed", "report", r, "err", err)
		return r, err
	}
	logger.Info("run passed", "report", r)
	return r, nil
}

// Barrier checks leader election over cfg.Rounds episodes of a ThreadSync
// barrier with cfg.Workers registered workers.
func Barrier(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	r := Report{Name: "barrier", Workers: cfg.Workers, Rounds: cfg.Rounds}
	if err := cfg.Validate(); err != nil {
		return r, err
	}

	ts := tsync.NewThreadSync(tsync.WithPollInterval(cfg.PollInterval))
	for range cfg.Workers {
		ts.Register()
	}
	base := ts.Generation()

	returns := make([][]barrierReturn, cfg.Workers)
	start := time.Now()
	err := runBounded(ctx, cfg.Timeout, cfg.Workers, func(id int) error {
		rs := make([]barrierReturn, 0, cfg.Rounds)
		defer func() { returns[id] = rs }()
		for i := range cfg.Rounds {
			role, gen := ts.FullBarrier()
			if role == tsync.Leader {
				logger.Debug("leader elected", "worker", id, "round", i, "gen", gen)
				ts.ContinueBarrier()
			}
			rs = append(rs, barrierReturn{gen: gen, round: i, role: role})
		}
		return nil
	})
	r.Elapsed = time.Since(start)
	if err != nil {
		return finish(logger, r, err)
	}

	t := newTally(cfg.Rounds)
	t.fold(returns)

	s, cerr := t.check(base, cfg.Workers, cfg.Rounds)
	r.Episodes, r.Leaders, r.Followers, r.Violations = s.episodes, s.leaders, s.workers, s.mismatches
	if cerr != nil {
		var me *multierror.Error
		if errors.As(cerr, &me) {
			r.Violations = max(r.Violations, len(me.Errors))
		}
		return finish(logger, r, fmt.Errorf("%w: %w", ErrInvariant, cerr))
	}
	return finish(logger, r, nil)
}

// eventArgs derives the args the leader publishes with code round.
func eventArgs(round int) uint64 {
	return uint64(round)*0x9e3779b97f4a7c15 + 1
}

// Event checks that a pair published by each episode's leader before
// ContinueBarrier is what every worker reads once released.
func Event(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	r := Report{Name: "event", Workers: cfg.Workers, Rounds: cfg.Rounds}
	if err := cfg.Validate(); err != nil {
		return r, err
	}

	ts := tsync.NewThreadSync(tsync.WithPollInterval(cfg.PollInterval))
	for range cfg.Workers {
		ts.Register()
	}

	var leaders, followers, bad atomic.Int64
	start := time.Now()
	err := runBounded(ctx, cfg.Timeout, cfg.Workers, func(int) error {
		for i := range cfg.Rounds {
			role, _ := ts.FullBarrier()
			if role == tsync.Leader {
				ts.SetEvent(uint64(i), eventArgs(i))
				ts.ContinueBarrier()
				leaders.Add(1)
			} else {
				followers.Add(1)
			}
			if code, args := ts.ReadExplicit(); code != uint64(i) || args != eventArgs(i) {
				bad.Add(1)
			}
		}
		return nil
	})
	r.Elapsed = time.Since(start)
	r.Episodes = int(ts.Generation())
	r.Leaders, r.Followers, r.Violations = int(leaders.Load()), int(followers.Load()), int(bad.Load())
	if err != nil {
		return finish(logger, r, err)
	}
	if r.Violations != 0 {
		return finish(logger, r, fmt.Errorf("%w: %d stale event reads", ErrInvariant, r.Violations))
	}
	return finish(logger, r, nil)
}

// exclusion checks that l admits one goroutine at a time across
// cfg.Workers goroutines doing cfg.Rounds acquisitions each.
func exclusion(ctx context.Context, cfg Config, l sync.Locker) (violations int, elapsed time.Duration, err error) {
	var inside, bad atomic.Int32
	var counter int
	start := time.Now()
	err = runBounded(ctx, cfg.Timeout, cfg.Workers, func(int) error {
		for range cfg.Rounds {
			l.Lock()
			if inside.Add(1) > 1 {
				bad.Add(1)
			}
			counter++
			inside.Add(-1)
			l.Unlock()
		}
		return nil
	})
	elapsed = time.Since(start)
	if err != nil {
		return 0, elapsed, err
	}
	violations = int(bad.Load())
	if violations != 0 {
		return violations, elapsed, fmt.Errorf("%w: %d overlapping holders", ErrInvariant, violations)
	}
	if want := cfg.Workers * cfg.Rounds; counter != want {
		return 1, elapsed, fmt.Errorf("%w: counter %d, want %d", ErrInvariant, counter, want)
	}
	return 0, elapsed, nil
}

// SpinLock checks mutual exclusion of tsync.SpinLock.
func SpinLock(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	r := Report{Name: "spinlock", Workers: cfg.Workers, Rounds: cfg.Rounds}
	if err := cfg.Validate(); err != nil {
		return r, err
	}
	var l tsync.SpinLock
	var err error
	r.Violations, r.Elapsed, err = exclusion(ctx, cfg, &l)
	if err == nil {
		l.Destroy()
	}
	return finish(logger, r, err)
}

// Mutex checks mutual exclusion of tsync.Mutex.
func Mutex(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	r := Report{Name: "mutex", Workers: cfg.Workers, Rounds: cfg.Rounds}
	if err := cfg.Validate(); err != nil {
		return r, err
	}
	var m tsync.Mutex
	var err error
	r.Violations, r.Elapsed, err = exclusion(ctx, cfg, &m)
	if err == nil {
		m.Destroy()
	}
	return finish(logger, r, err)
}

// Gate checks ConditionGate liveness. Each round the barrier leader raises
// the gate, goroutine 0 releases it, and every other goroutine waits on it
// and must then observe it released.
func Gate(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	r := Report{Name: "gate", Workers: cfg.Workers, Rounds: cfg.Rounds}
	if err := cfg.Validate(); err != nil {
		return r, err
	}

	g := tsync.NewConditionGate()
	ts := tsync.NewThreadSync(tsync.WithPollInterval(cfg.PollInterval))
	for range cfg.Workers {
		ts.Register()
	}

	var bad atomic.Int32
	start := time.Now()
	err := runBounded(ctx, cfg.Timeout, cfg.Workers, func(id int) error {
		for range cfg.Rounds {
			if role, _ := ts.FullBarrier(); role == tsync.Leader {
				g.Raise()
				ts.ContinueBarrier()
			}
			if id == 0 {
				g.Release()
				continue
			}
			g.Wait()
			if g.IsRaised() {
				bad.Add(1)
			}
		}
		return nil
	})
	r.Elapsed = time.Since(start)
	r.Episodes = int(ts.Generation())
	r.Violations = int(bad.Load())
	if err != nil {
		return finish(logger, r, err)
	}
	if r.Violations != 0 {
		return finish(logger, r, fmt.Errorf("%w: %d waiters saw a raised gate", ErrInvariant, r.Violations))
	}
	g.Destroy()
	return finish(logger, r, nil)
}
