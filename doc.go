// Package tsync provides low-level thread-coordination primitives for
// multi-goroutine hot paths.
//
//   - [SpinLock]: busy-wait mutual exclusion for critical sections of a few
//     instructions.
//   - [Mutex]: blocking mutual exclusion that records its last acquirer.
//   - [ConditionGate]: a one-bit latch whose release wakes every waiter.
//   - [ThreadSync]: event broadcast plus a repeatable rendezvous barrier
//     with leader election, keyed by a generation id.
//
// None of the primitives returns an error. Caller-contract violations are
// fatal when assertions are compiled in (the default) and undefined when
// built with the tsync_noassert tag. Building with tsync_debug records the
// last acquirer location of locks for post-mortem diagnosis.
//
// No primitive supports cancellation or timeouts; bounded waits belong in
// the caller's own loop above them.
package tsync
