package tsync

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/llxisdsh/tsync/internal/opt"
)

// waitTimeout fails the test if wg does not finish within d.
func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("goroutines did not finish within %v", d)
	}
}

// mustFatal runs fn and checks that it fails with a message containing want.
// It skips when contract checks are compiled out.
func mustFatal(t *testing.T, want string, fn func()) {
	t.Helper()
	if !opt.Assert_ {
		t.Skip("assertions disabled by tsync_noassert")
	}
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected fatal %q, got none", want)
		}
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, "tsync: ") || !strings.Contains(msg, want) {
			t.Fatalf("fatal = %v, want %q", r, want)
		}
	}()
	fn()
}

func TestFatalPrefix(t *testing.T) {
	defer func() {
		if r := recover(); r != "tsync: boom" {
			t.Fatalf("recover = %v", r)
		}
	}()
	fatal("boom")
}

func TestSiteString(t *testing.T) {
	if got := siteString(nil); got != "" {
		t.Fatalf("siteString(nil) = %q", got)
	}
	s := "x.go:1"
	if got := siteString(&s); got != s {
		t.Fatalf("siteString = %q", got)
	}
}
