package tsync

import (
	"sync"
	"sync/atomic"
)

const (
	gateReleased uint32 = 0
	gateRaised   uint32 = 1
)

// ConditionGate is a reusable one-bit latch with broadcast release.
//
// State:
//   - Released: Wait returns immediately.
//   - Raised: Wait blocks until the next Release.
//
// Raise sets the gate, Release clears it and wakes every blocked waiter.
// Unlike a semaphore it carries no count, and unlike a condition variable it
// waits on a single fixed predicate.
//
// A ConditionGate must be initialized with Init or [NewConditionGate]
// before use.
type ConditionGate struct {
	_      noCopy
	mu     Mutex
	cond   sync.Cond
	raised atomic.Uint32
}

// NewConditionGate returns an initialized, released gate.
func NewConditionGate() *ConditionGate {
	g := &ConditionGate{}
	g.Init()
	return g
}

// Init binds the condition variable to the gate's mutex and releases the
// gate. It must not race with any other method.
func (g *ConditionGate) Init() {
	g.mu.Init()
	g.cond = sync.Cond{L: &g.mu.mu}
	g.raised.Store(gateReleased)
}

// Destroy checks that the gate is released. Destroying a raised gate is
// fatal.
func (g *ConditionGate) Destroy() {
	assert(g.raised.Load() == gateReleased, "destroy of raised gate")
	g.mu.Destroy()
}

// Raise sets the gate so that subsequent Wait calls block.
//
// Raise takes the internal mutex, so it may be called concurrently with
// Wait and Release. A waiter that entered Wait before Raise returned may
// observe the gate as released and return immediately.
func (g *ConditionGate) Raise() {
	g.mu.Lock()
	g.raised.Store(gateRaised)
	g.mu.Unlock()
}

// Wait blocks while the gate is raised. The flag is re-checked after every
// wakeup, so spurious wakeups do not release a waiter early.
func (g *ConditionGate) Wait() {
	g.mu.Lock()
	assert(g.cond.L != nil, "wait on uninitialized gate")
	for g.raised.Load() == gateRaised {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// Release clears the gate and wakes every goroutine blocked in Wait.
// Releasing a released gate is a no-op apart from the broadcast.
func (g *ConditionGate) Release() {
	g.mu.Lock()
	assert(g.cond.L != nil, "release of uninitialized gate")
	g.raised.Store(gateReleased)
	g.cond.Broadcast()
	g.mu.Unlock()
}

// IsRaised returns a snapshot of whether the gate is raised.
func (g *ConditionGate) IsRaised() bool {
	return g.raised.Load() == gateRaised
}
