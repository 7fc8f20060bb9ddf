package tsync

import (
	"sync"
	"sync/atomic"

	"github.com/llxisdsh/tsync/internal/opt"
)

// Mutex is a blocking mutual exclusion lock for sections where the holder
// may sleep. It is a thin wrapper over sync.Mutex that additionally records
// the last acquirer for post-mortem deadlock diagnosis.
//
// Every method is a no-op on a nil *Mutex.
//
// It is zero-value usable.
type Mutex struct {
	_     noCopy
	mu    sync.Mutex
	where atomic.Pointer[string]
}

// Init resets the mutex. It must not race with any other method.
func (m *Mutex) Init() {
	if m == nil {
		return
	}
	m.mu = sync.Mutex{}
	m.where.Store(nil)
}

// Destroy checks that the mutex is not held. Destroying a held mutex is
// fatal.
func (m *Mutex) Destroy() {
	if m == nil {
		return
	}
	if opt.Assert_ {
		if !m.mu.TryLock() {
			fatal("destroy of locked mutex")
		}
		m.mu.Unlock()
	}
	m.where.Store(nil)
}

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if where := site(); where != nil {
		m.where.Store(where)
	}
}

// TryLock acquires the mutex if it is free and reports whether it did.
func (m *Mutex) TryLock() bool {
	if m == nil {
		return false
	}
	if !m.mu.TryLock() {
		return false
	}
	if where := site(); where != nil {
		m.where.Store(where)
	}
	return true
}

// Unlock releases the mutex. Unlocking a free mutex is a fatal runtime
// error raised by sync.Mutex.
func (m *Mutex) Unlock() {
	if m == nil {
		return
	}
	if opt.Debug_ {
		m.where.Store(nil)
	}
	m.mu.Unlock()
}

// LastAcquirer returns the advisory "file:line" of the current holder.
// It is empty unless built with tsync_debug, and may be stale.
func (m *Mutex) LastAcquirer() string {
	if m == nil {
		return ""
	}
	return siteString(m.where.Load())
}
