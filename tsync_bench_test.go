package tsync

import (
	"fmt"
	"sync"
	"testing"
)

func BenchmarkSpinLock(b *testing.B) {
	var l SpinLock
	var counter int
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Lock()
			counter++
			l.Unlock()
		}
	})
}

func BenchmarkSpinLockTryLock(b *testing.B) {
	var l SpinLock
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if l.TryLock() {
				l.Unlock()
			}
		}
	})
}

func BenchmarkMutex(b *testing.B) {
	var m Mutex
	var counter int
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			counter++
			m.Unlock()
		}
	})
}

func BenchmarkSyncMutex(b *testing.B) {
	var m sync.Mutex
	var counter int
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Lock()
			counter++
			m.Unlock()
		}
	})
}

func BenchmarkReadExplicit(b *testing.B) {
	var ts ThreadSync
	ts.SetEvent(1, 2)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = ts.ReadExplicit()
		}
	})
}

func BenchmarkFullBarrier(b *testing.B) {
	for _, workers := range []int{2, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			ts := NewThreadSync()
			for range workers {
				ts.Register()
			}
			b.ResetTimer()
			var wg sync.WaitGroup
			wg.Add(workers)
			for range workers {
				go func() {
					defer wg.Done()
					for range b.N {
						if role, _ := ts.FullBarrier(); role == Leader {
							ts.ContinueBarrier()
						}
					}
				}()
			}
			wg.Wait()
		})
	}
}
