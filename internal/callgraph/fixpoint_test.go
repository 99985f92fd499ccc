package callgraph

import (
	"context"
	"testing"
	"time"

	"cfacheck/attrs"
	"cfacheck/internal/tracing"
	"cfacheck/prog"
)

func fns(idents ...string) []*prog.Function {
	out := make([]*prog.Function, len(idents))
	for i, id := range idents {
		out[i] = &prog.Function{Ident: id, Blocks: []prog.Block{{}}}
	}
	return out
}

func callTo(callees ...string) tracing.Facts {
	f := tracing.Facts{Abnormal: attrs.ProvenFalse}
	for _, c := range callees {
		f.Calls = append(f.Calls, tracing.CallSite{Callee: c})
	}
	return f
}

func TestPropagateMutualRecursion(t *testing.T) {
	// A and B call each other exclusively on their only would-be abnormal
	// paths; with no local evidence the least fixed point is proven-false.
	g := Build(fns("a", "b"), []tracing.Facts{callTo("b"), callTo("a")})

	res := g.Propagate(context.Background(), 1)
	if !res.Converged {
		t.Fatal("expected convergence")
	}

	// Cycle length 2 → at most 3 rounds.
	if res.Rounds > 3 {
		t.Errorf("expected convergence within cycle length + 1 rounds, took %d", res.Rounds)
	}

	for i, want := range []attrs.Confidence{attrs.ProvenFalse, attrs.ProvenFalse} {
		if res.Facts[i] != want {
			t.Errorf("node %d: got %s, want %s", i, res.Facts[i], want)
		}
	}
}

func TestPropagateChain(t *testing.T) {
	// c aborts; b calls c; a calls b. Truth travels the whole chain.
	facts := []tracing.Facts{
		callTo("b"),
		callTo("c"),
		{Abnormal: attrs.ProvenTrue},
	}

	g := Build(fns("a", "b", "c"), facts)
	res := g.Propagate(context.Background(), 4)

	for i, id := range []string{"a", "b", "c"} {
		if res.Facts[i] != attrs.ProvenTrue {
			t.Errorf("%s: got %s, want proven-true", id, res.Facts[i])
		}
	}
}

func TestPropagateGuardedEdgeStops(t *testing.T) {
	facts := []tracing.Facts{
		{Abnormal: attrs.ProvenFalse, Calls: []tracing.CallSite{{Callee: "b", Guarded: true}}},
		{Abnormal: attrs.ProvenTrue},
	}

	g := Build(fns("a", "b"), facts)
	res := g.Propagate(context.Background(), 2)

	if res.Facts[0] != attrs.ProvenFalse {
		t.Errorf("guarded edge must absorb the callee's abnormal exit, got %s", res.Facts[0])
	}
	if res.Facts[1] != attrs.ProvenTrue {
		t.Errorf("callee keeps its own fact, got %s", res.Facts[1])
	}
}

func TestPropagateUnknownCallee(t *testing.T) {
	g := Build(fns("a"), []tracing.Facts{callTo("not_in_snapshot")})
	res := g.Propagate(context.Background(), 1)

	if res.Facts[0] != attrs.Unverifiable {
		t.Errorf("unknown callee must degrade to unverifiable, got %s", res.Facts[0])
	}
}

func TestPropagateUnverifiableDoesNotBecomeTrue(t *testing.T) {
	facts := []tracing.Facts{
		callTo("b"),
		{Abnormal: attrs.Unverifiable},
	}

	g := Build(fns("a", "b"), facts)
	res := g.Propagate(context.Background(), 2)

	if res.Facts[0] != attrs.Unverifiable {
		t.Errorf("got %s, want unverifiable", res.Facts[0])
	}
}

func TestPropagateDeadlineDegrades(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	facts := []tracing.Facts{
		callTo("b"),
		{Abnormal: attrs.ProvenTrue},
	}

	g := Build(fns("a", "b"), facts)
	res := g.Propagate(ctx, 2)

	if res.Converged {
		t.Fatal("expired deadline must report non-convergence")
	}
	if res.Facts[0] != attrs.Unverifiable {
		t.Errorf("unconverged fact must degrade to unverifiable, got %s", res.Facts[0])
	}
	if res.Facts[1] != attrs.ProvenTrue {
		t.Errorf("proven-true is monotone-final and must survive the abort, got %s", res.Facts[1])
	}
}

func TestPropagateWorkerCountIrrelevant(t *testing.T) {
	facts := []tracing.Facts{
		callTo("b", "c"),
		callTo("c"),
		{Abnormal: attrs.ProvenTrue},
		callTo("a"),
	}
	idents := fns("a", "b", "c", "d")

	var first []attrs.Confidence
	for _, jobs := range []int{1, 4, 16} {
		res := Build(idents, facts).Propagate(context.Background(), jobs)
		if first == nil {
			first = res.Facts
			continue
		}
		for i := range first {
			if res.Facts[i] != first[i] {
				t.Fatalf("jobs=%d: fact %d diverged: %s vs %s", jobs, i, res.Facts[i], first[i])
			}
		}
	}
}
