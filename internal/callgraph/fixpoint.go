package callgraph

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"cfacheck/attrs"
)

// Result carries the propagated mayAbnormallyExit facts.
type Result struct {
	// Facts is positionally parallel to the build input.
	Facts []attrs.Confidence

	// Rounds is how many full recomputation rounds ran.
	Rounds int

	// Converged is false when the run's deadline cut iteration short; in
	// that case every fact not yet proven true is degraded to unverifiable.
	Converged bool
}

// Propagate iterates to a fixed point. Facts from round k are fully committed
// before round k+1 starts; within a round every function is recomputed in
// parallel from the committed snapshot. Convergence takes at most the longest
// simple cycle length plus one rounds.
func (g *Graph) Propagate(ctx context.Context, jobs int) Result {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(g.nodes) && len(g.nodes) > 0 {
		jobs = len(g.nodes)
	}

	cur := make([]attrs.Confidence, len(g.nodes))
	for i := range g.nodes {
		cur[i] = g.nodes[i].base
	}

	res := Result{Converged: true}

	for {
		select {
		case <-ctx.Done():
			return g.abort(cur, res)
		default:
		}

		next := make([]attrs.Confidence, len(g.nodes))
		var changed atomic.Bool

		eg := errgroup.Group{}
		eg.SetLimit(jobs)
		for i := range g.nodes {
			eg.Go(func() error {
				n := &g.nodes[i]

				fact := n.base
				for _, j := range n.callees {
					fact = attrs.Join(fact, cur[j])
				}

				// Slot i has exactly one writer, no locking needed.
				next[i] = fact
				if fact != cur[i] {
					changed.Store(true)
				}
				return nil
			})
		}
		// Barrier: round k is fully committed before round k+1 reads it.
		_ = eg.Wait()

		cur = next
		res.Rounds++

		if !changed.Load() {
			res.Facts = cur
			return res
		}
	}
}

// abort degrades unconverged facts on deadline. Facts only ever grow along
// ProvenFalse < Unverifiable < ProvenTrue, so a proven-true is final and kept;
// everything else is reported unverifiable, never silently treated as safe.
func (g *Graph) abort(cur []attrs.Confidence, res Result) Result {
	for i, f := range cur {
		if f != attrs.ProvenTrue {
			cur[i] = attrs.Unverifiable
		}
	}

	res.Facts = cur
	res.Converged = false
	return res
}
