package tsync

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/llxisdsh/tsync/internal/opt"
)

func TestSpinLock_MutualExclusion(t *testing.T) {
	var l SpinLock
	const goroutines = 8
	iterations := 2000
	if opt.Race_ {
		iterations = 500
	}

	var inside, maxInside atomic.Int32
	var counter int

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range iterations {
				l.Lock()
				if v := inside.Add(1); v > maxInside.Load() {
					maxInside.Store(v)
				}
				counter++
				inside.Add(-1)
				l.Unlock()
			}
		}()
	}
	waitTimeout(t, &wg, 30*time.Second)

	if m := maxInside.Load(); m != 1 {
		t.Fatalf("max goroutines inside = %d, want 1", m)
	}
	if counter != goroutines*iterations {
		t.Fatalf("counter = %d, want %d", counter, goroutines*iterations)
	}
	if l.IsLocked() {
		t.Fatal("lock held after all goroutines finished")
	}
	l.Destroy()
}

func TestSpinLock_TryLockExclusive(t *testing.T) {
	var l SpinLock
	const N = 16

	var wins atomic.Int32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(N)
	for range N {
		go func() {
			defer wg.Done()
			<-start
			if l.TryLock() {
				wins.Add(1)
			}
		}()
	}
	close(start)
	waitTimeout(t, &wg, 5*time.Second)

	if w := wins.Load(); w != 1 {
		t.Fatalf("TryLock winners = %d, want 1", w)
	}
	if !l.IsLocked() {
		t.Fatal("expected lock held by the winner")
	}
	l.Unlock()
	if !l.TryLock() {
		t.Fatal("TryLock failed on a free lock")
	}
	l.Unlock()
}

func TestSpinLock_WaitUnlocked(t *testing.T) {
	var l SpinLock
	l.Lock()

	done := make(chan struct{})
	go func() {
		l.WaitUnlocked()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitUnlocked returned while the lock was held")
	case <-time.After(10 * time.Millisecond):
	}

	l.Unlock()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitUnlocked did not return after Unlock")
	}
	if l.IsLocked() {
		t.Fatal("WaitUnlocked must not acquire the lock")
	}

	// Free lock: immediate.
	l.WaitUnlocked()
}

func TestSpinLock_Nil(t *testing.T) {
	var l *SpinLock
	l.Init()
	l.Lock()
	l.WaitUnlocked()
	l.Unlock()
	l.Destroy()
	if l.TryLock() {
		t.Error("TryLock on nil lock reported success")
	}
	if l.IsLocked() {
		t.Error("IsLocked on nil lock reported true")
	}
	if s := l.LastAcquirer(); s != "" {
		t.Errorf("LastAcquirer on nil lock = %q", s)
	}
}

func TestSpinLock_Init(t *testing.T) {
	var l SpinLock
	l.Lock()
	l.Init()
	if l.IsLocked() {
		t.Fatal("Init did not reset the lock")
	}
}

func TestSpinLock_UnlockFree(t *testing.T) {
	var l SpinLock
	mustFatal(t, "unlock of unlocked spinlock", l.Unlock)
}

func TestSpinLock_DestroyHeld(t *testing.T) {
	var l SpinLock
	l.Lock()
	mustFatal(t, "destroy of locked spinlock", l.Destroy)
}

func TestSpinLock_LastAcquirer(t *testing.T) {
	var l SpinLock
	l.Lock()
	where := l.LastAcquirer()
	l.Unlock()

	if !opt.Debug_ {
		if where != "" {
			t.Fatalf("LastAcquirer = %q without tsync_debug", where)
		}
		return
	}
	if !strings.Contains(where, "spin_lock_test.go:") {
		t.Fatalf("LastAcquirer = %q, want this file", where)
	}
	if s := l.LastAcquirer(); s != "" {
		t.Fatalf("LastAcquirer after Unlock = %q", s)
	}
}
