package cfacheck

import (
	"fmt"
	"sync"
)

// reportEngine collects findings discovered during a run.
type reportEngine struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Phase marks the pipeline stage where a finding was produced.
type Phase int

const (
	phaseInvalid Phase = iota

	// PhaseDecode is suffix decoding over raw identifiers.
	PhaseDecode
	// PhaseTrace is per-body inference and call graph propagation.
	PhaseTrace
	// PhaseCheck is the declared-versus-inferred comparison.
	PhaseCheck
)

func (p Phase) String() string {
	switch p {
	case PhaseDecode:
		return "decode"
	case PhaseTrace:
		return "trace"
	case PhaseCheck:
		return "check"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// phaseReporter binds a reportEngine to a fixed phase so call sites don't
// repeat it.
type phaseReporter struct {
	parent *reportEngine
	phase  Phase
}

// Phase returns a phase-bound reporter.
func (r *reportEngine) Phase(p Phase) *phaseReporter {
	return &phaseReporter{parent: r, phase: p}
}

// Report adds a new record to the engine.
func (r *reportEngine) Report(d Diagnostic) {
	r.mu.Lock()
	r.diags = append(r.diags, d)
	r.mu.Unlock()
}

// Report records a finding under the bound phase.
func (rp *phaseReporter) Report(d Diagnostic) {
	d.Phase = rp.phase
	if d.Message == "" {
		d.Message = d.Rule.Description()
	}
	rp.parent.Report(d)
}

// Diagnostics returns the findings in deterministic order.
func (r *reportEngine) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	sortDiagnostics(out)
	return out
}
