package tsync

import (
	"sync/atomic"

	"github.com/llxisdsh/tsync/internal/opt"
)

const (
	spinFree uint32 = 0
	spinHeld uint32 = 1
)

// SpinLock is a busy-wait mutual exclusion lock for critical sections of a
// handful of instructions.
//
// Lock retries a 0 -> 1 compare-and-swap in a tight loop with no backoff and
// no fairness. That is only a good trade when the lock is held for a few
// instructions; anything that may sleep belongs under [Mutex].
//
// Every method is a no-op on a nil *SpinLock (TryLock and IsLocked report
// false), so optional-lock call sites need no branch.
//
// It is zero-value usable.
type SpinLock struct {
	_     noCopy
	state atomic.Uint32
	// where is the advisory location of the last acquirer, written after
	// acquisition with tsync_debug only. Never read it for correctness.
	where atomic.Pointer[string]
}

// Init resets the lock to free. It must not race with any other method.
func (l *SpinLock) Init() {
	if l == nil {
		return
	}
	l.state.Store(spinFree)
	l.where.Store(nil)
}

// Destroy checks that the lock is free. Destroying a held lock is fatal.
func (l *SpinLock) Destroy() {
	if l == nil {
		return
	}
	assert(l.state.Load() == spinFree, "destroy of locked spinlock")
	l.where.Store(nil)
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	if l == nil {
		return
	}
	for !l.state.CompareAndSwap(spinFree, spinHeld) {
	}
	if where := site(); where != nil {
		l.where.Store(where)
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
// It never blocks.
func (l *SpinLock) TryLock() bool {
	if l == nil {
		return false
	}
	if !l.state.CompareAndSwap(spinFree, spinHeld) {
		return false
	}
	if where := site(); where != nil {
		l.where.Store(where)
	}
	return true
}

// WaitUnlocked spins until the lock is observed free, without acquiring it.
// The lock may be taken again by the time WaitUnlocked returns.
func (l *SpinLock) WaitUnlocked() {
	if l == nil {
		return
	}
	for l.state.Load() == spinHeld {
	}
}

// Unlock releases the lock. Unlocking a free lock is fatal.
//
// A locked SpinLock is not associated with a particular goroutine.
func (l *SpinLock) Unlock() {
	if l == nil {
		return
	}
	if opt.Debug_ {
		l.where.Store(nil)
	}
	if !l.state.CompareAndSwap(spinHeld, spinFree) {
		assert(false, "unlock of unlocked spinlock")
		l.state.Store(spinFree)
	}
}

// IsLocked returns a snapshot of whether the lock is held.
func (l *SpinLock) IsLocked() bool {
	if l == nil {
		return false
	}
	return l.state.Load() == spinHeld
}

// LastAcquirer returns the advisory "file:line" of the most recent acquirer.
// It is empty unless built with tsync_debug, and may be stale.
func (l *SpinLock) LastAcquirer() string {
	if l == nil {
		return ""
	}
	return siteString(l.where.Load())
}
