package tsync

import (
	"sync/atomic"
	"time"

	"github.com/llxisdsh/tsync/internal/opt"
)

// Role is the outcome of a FullBarrier call.
type Role uint8

const (
	// Worker callers return once the leader has released the episode.
	Worker Role = iota
	// Leader is the single caller per episode that observed the final
	// arrival. It returns without waiting and must call ContinueBarrier.
	Leader
)

func (r Role) String() string {
	switch r {
	case Worker:
		return "worker"
	case Leader:
		return "leader"
	default:
		return "unknown"
	}
}

// cacheLinePad keeps fields polled by every worker off the lines written by
// arrivals.
type cacheLinePad struct {
	_ [opt.CacheLineSize_]byte
}

// ThreadSync coordinates a dynamically sized pool of worker goroutines.
//
// It carries two protocols over one structure:
//   - Event broadcast: SetEvent publishes a (code, args) pair that
//     ReadExplicit always observes as a unit.
//   - Full barrier: every registered worker calls FullBarrier once per
//     episode. Exactly one caller per episode returns Leader without
//     blocking; it does the episode's work and calls ContinueBarrier, which
//     releases the Workers.
//
// Episodes are identified by a generation id. ContinueBarrier advances it,
// and waiting workers leave once they observe a generation different from
// the one they sampled on entry. Resetting the arrival counter alone would
// let a late poller read the next episode's counter as its own.
//
// The registered worker count must not change while any FullBarrier call is
// outstanding, and FullBarrier with zero registered workers is undefined.
// Neither is checked.
//
// It is zero-value usable.
type ThreadSync struct {
	_       noCopy
	lock    SpinLock
	workers atomic.Uint32
	cfg     ThreadSyncConfig

	_ cacheLinePad
	// counter is the number of arrivals in the current episode.
	counter atomic.Uint32

	_ cacheLinePad
	// gen is the current episode's generation id.
	gen atomic.Uint64

	_ cacheLinePad
	// seq is even when (code, args) is stable, odd while SetEvent writes.
	seq  atomic.Uint64
	code atomic.Uint64
	args atomic.Uint64
}

// NewThreadSync returns an initialized ThreadSync with no registered
// workers.
func NewThreadSync(options ...func(*ThreadSyncConfig)) *ThreadSync {
	ts := &ThreadSync{}
	ts.Init(options...)
	return ts
}

// Init resets ts to its initial state and applies options. It must not race
// with any other method.
func (ts *ThreadSync) Init(options ...func(*ThreadSyncConfig)) {
	ts.lock.Init()
	ts.cfg = ThreadSyncConfig{}
	for _, o := range options {
		o(&ts.cfg)
	}
	ts.workers.Store(0)
	ts.counter.Store(0)
	ts.gen.Store(0)
	ts.seq.Store(0)
	ts.code.Store(0)
	ts.args.Store(0)
}

// Register adds a worker to the pool.
// It must not race with an outstanding FullBarrier.
func (ts *ThreadSync) Register() {
	ts.lock.Lock()
	ts.workers.Add(1)
	ts.lock.Unlock()
}

// Unregister removes a worker from the pool.
// It must not race with an outstanding FullBarrier.
func (ts *ThreadSync) Unregister() {
	ts.lock.Lock()
	if ts.workers.Load() == 0 {
		ts.lock.Unlock()
		assert(false, "unregister with no registered workers")
		return
	}
	ts.workers.Add(^uint32(0))
	ts.lock.Unlock()
}

// Workers returns the number of registered workers.
func (ts *ThreadSync) Workers() int {
	return int(ts.workers.Load())
}

// Generation returns the id of the current barrier episode.
func (ts *ThreadSync) Generation() uint64 {
	return ts.gen.Load()
}

// SetEvent publishes a new (code, args) pair.
func (ts *ThreadSync) SetEvent(code, args uint64) {
	ts.lock.Lock()
	s := ts.seq.Load()
	ts.seq.Store(s + 1)
	ts.code.Store(code)
	ts.args.Store(args)
	ts.seq.Store(s + 2)
	ts.lock.Unlock()
}

// ReadRelaxed returns the most recently published code and args without
// validating them against each other. The pair may mix two publishes.
func (ts *ThreadSync) ReadRelaxed() (code, args uint64) {
	return ts.code.Load(), ts.args.Load()
}

// ReadExplicit returns a (code, args) pair exactly as one SetEvent
// published it. It never takes the internal lock; it retries while a
// publish is in progress.
func (ts *ThreadSync) ReadExplicit() (code, args uint64) {
	var spins int
	for {
		s1 := ts.seq.Load()
		if s1&1 == 0 {
			code, args = ts.code.Load(), ts.args.Load()
			if ts.seq.Load() == s1 {
				return code, args
			}
		}
		relax(&spins)
	}
}

// FullBarrier enters the current episode and returns the caller's role
// together with the generation id of that episode.
//
// The caller whose arrival completes the registered count is the Leader and
// returns immediately. Every other caller polls the generation id, sleeping
// the configured poll interval between polls, until ContinueBarrier
// advances it, and then returns Worker.
func (ts *ThreadSync) FullBarrier() (Role, uint64) {
	gen := ts.gen.Load()
	if ts.counter.Add(1) == ts.workers.Load() {
		return Leader, gen
	}
	poll := ts.cfg.interval()
	for ts.gen.Load() == gen {
		time.Sleep(poll)
	}
	return Worker, gen
}

// ContinueBarrier ends the current episode and releases its Workers.
// Only the episode's Leader may call it. Everything the Leader wrote before
// ContinueBarrier is visible to each Worker once its FullBarrier returns.
func (ts *ThreadSync) ContinueBarrier() {
	ts.lock.Lock()
	if opt.Assert_ && ts.counter.Load() != ts.workers.Load() {
		ts.lock.Unlock()
		fatal("continue of incomplete barrier episode")
	}
	ts.counter.Store(0)
	ts.gen.Add(1)
	ts.lock.Unlock()
}
