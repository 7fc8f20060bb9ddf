package tsync

import (
	"runtime"
	_ "unsafe" // for linkname

	"github.com/llxisdsh/tsync/internal/opt"
)

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// fatal reports a caller-contract violation or an environment failure.
// Nothing in this package treats it as recoverable.
func fatal(msg string) {
	panic("tsync: " + msg)
}

// assert calls fatal with msg when checks are compiled in and ok is false.
func assert(ok bool, msg string) {
	if opt.Assert_ && !ok {
		fatal(msg)
	}
}

// site captures the caller of the exported method that invoked it, or nil
// when the tsync_debug side channel is compiled out.
func site() *string {
	if !opt.Debug_ {
		return nil
	}
	return opt.Caller(2)
}

func siteString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// relax yields the processor briefly inside a retry loop whose other side
// is a writer holding a lock for a handful of instructions.
func relax(spins *int) {
	if runtime_canSpin(*spins) {
		*spins++
		runtime_doSpin()
		return
	}
	*spins = 0
	runtime.Gosched()
}

// nolint:all
//
//go:linkname runtime_canSpin sync.runtime_canSpin
//goland:noinspection ALL
func runtime_canSpin(i int) bool

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//goland:noinspection ALL
func runtime_doSpin()
