package cfacheck

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cfacheck/attrs"
	"cfacheck/cfarules"
	"cfacheck/internal/callgraph"
	"cfacheck/internal/tracing"
	"cfacheck/policy"
	"cfacheck/prog"
)

// Options tunes a run.
type Options struct {
	// Jobs bounds the worker pool; non-positive means GOMAXPROCS.
	Jobs int
}

// Run drives the whole pipeline over one snapshot: decode → infer →
// propagate → compare. It returns the deterministically ordered diagnostic
// sequence, the sole artifact the core produces.
//
// A deadline on ctx aborts the analysis gracefully: every fact that had not
// converged is reported unverifiable rather than assumed safe. The returned
// error covers only structurally broken input, never individual findings.
func Run(ctx context.Context, snap *prog.Snapshot, pol *policy.Policy, opts Options) ([]Diagnostic, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}

	if pol == nil {
		pol = policy.Default()
	}
	compiled := pol.Compile()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(snap.Functions) && len(snap.Functions) > 0 {
		jobs = len(snap.Functions)
	}

	reports := &reportEngine{}

	// Decode every identifier. Malformed suffixes are reported and excluded
	// from contract checking, but their functions stay analyzable as callees.
	decodeRep := reports.Phase(PhaseDecode)
	decoded := make([]attrs.Decoded, len(snap.Functions))
	for i, fn := range snap.Functions {
		decoded[i] = attrs.DecodeIdent(fn.Ident)
		if decoded[i].Status == attrs.DecodeMalformed {
			decodeRep.Report(Diagnostic{
				Rule:     cfarules.MalformedSuffix(),
				Severity: SevError,
				Pos:      fn.Pos,
				Func:     fn.Ident,
				Message:  decoded[i].Reason,
			})
		}
	}

	// Infer local facts. Embarrassingly parallel: one single-writer result
	// slot per function, no locking.
	engine := tracing.NewEngine(compiled)
	facts := make([]tracing.Facts, len(snap.Functions))

	if len(snap.Functions) > 0 {
		g := errgroup.Group{}
		g.SetLimit(jobs)
		for i, fn := range snap.Functions {
			g.Go(func() error {
				if ctx.Err() != nil {
					// Deadline hit before this body was traced:
					// nothing proven, nothing assumed.
					facts[i] = tracing.Unresolved()
					return nil
				}
				facts[i] = engine.Infer(fn)
				return nil
			})
		}
		_ = g.Wait()
	}

	// Resolve abnormal-exit facts across the call graph.
	prop := callgraph.Build(snap.Functions, facts).Propagate(ctx, jobs)

	// Compare declared bits against inferred facts.
	chk := checker{r: reports.Phase(PhaseCheck), aborted: !prop.Converged}
	for i, fn := range snap.Functions {
		if decoded[i].Status != attrs.DecodeOK {
			continue
		}
		chk.check(fn, decoded[i].Set, facts[i], prop.Facts[i])
	}

	return reports.Diagnostics(), nil
}
