package stress

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/llxisdsh/pb"

	"github.com/llxisdsh/tsync"
)

// episode counts the barrier returns that reported one generation id.
type episode struct {
	// round is the round index of the first return recorded for this id.
	round   int
	leaders int
	workers int
	// stray counts returns from a different round than round.
	stray int
}

// barrierReturn is one FullBarrier return as a worker saw it.
type barrierReturn struct {
	gen   uint64
	round int
	role  tsync.Role
}

// tally collects FullBarrier returns keyed by generation id. Workers keep
// their own []barrierReturn while the barrier runs; the tally is filled
// from a single goroutine once they are done.
type tally struct {
	m *pb.MapOf[uint64, *episode]
}

func newTally(rounds int) *tally {
	return &tally{m: pb.NewMapOf[uint64, *episode](pb.WithPresize(rounds))}
}

// fold records every return of every worker.
func (t *tally) fold(returns [][]barrierReturn) {
	for _, rs := range returns {
		for _, r := range rs {
			t.record(r.gen, r.round, r.role)
		}
	}
}

func (t *tally) record(gen uint64, round int, role tsync.Role) {
	e, _ := t.m.ProcessEntry(
		gen,
		func(l *pb.EntryOf[uint64, *episode]) (*pb.EntryOf[uint64, *episode], *episode, bool) {
			if l != nil {
				return l, l.Value, true
			}
			e := &episode{round: round}
			return &pb.EntryOf[uint64, *episode]{Value: e}, e, false
		},
	)
	if e.round != round {
		e.stray++
	}
	if role == tsync.Leader {
		e.leaders++
	} else {
		e.workers++
	}
}

// summary is what a tally observed across a run.
type summary struct {
	episodes   int
	leaders    int
	workers    int
	mismatches int
}

// check verifies that generations base..base+rounds-1 each saw exactly one
// leader and workers-1 workers, all from the matching round.
func (t *tally) check(base uint64, workers, rounds int) (summary, error) {
	var s summary
	var merr error
	t.m.Range(func(gen uint64, e *episode) bool {
		s.episodes++
		l, w, stray := e.leaders, e.workers, e.stray
		s.leaders += l
		s.workers += w
		s.mismatches += stray
		if want := base + uint64(e.round); gen != want {
			s.mismatches += l + w - stray
			merr = multierror.Append(merr, fmt.Errorf("round %d reported generation %d, want %d", e.round, gen, want))
		}
		if l != 1 {
			merr = multierror.Append(merr, fmt.Errorf("generation %d: %d leaders", gen, l))
		}
		if w != workers-1 {
			merr = multierror.Append(merr, fmt.Errorf("generation %d: %d workers, want %d", gen, w, workers-1))
		}
		if stray != 0 {
			merr = multierror.Append(merr, fmt.Errorf("generation %d: %d returns from another round", gen, stray))
		}
		return true
	})
	if s.episodes != rounds {
		merr = multierror.Append(merr, fmt.Errorf("%d distinct generations, want %d", s.episodes, rounds))
	}
	return s, merr
}
