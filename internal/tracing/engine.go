package tracing

import (
	"cfacheck/attrs"
	"cfacheck/policy"
	"cfacheck/prog"
)

// Engine computes per-function local facts under a compiled policy.
type Engine struct {
	pol *policy.Compiled
}

// NewEngine is [Engine] constructor.
func NewEngine(pol *policy.Compiled) *Engine {
	return &Engine{pol: pol}
}

// CallSite is a reference to another snapshot symbol found in a body.
type CallSite struct {
	Callee  string
	Guarded bool
	Pos     prog.Pos
}

// Facts are the inferred counterparts of a declared attribute set.
//
// Abnormal holds local evidence only; the call graph propagator folds in the
// callees listed in Calls. MutConst and Registers are final as computed.
type Facts struct {
	Abnormal  attrs.Confidence
	MutConst  attrs.Confidence
	Registers attrs.Confidence

	// MutConstObserved is set when the body actually writes hidden state
	// of the first parameter. Without a witness a proven-true MutConst is
	// merely vacuous and must not count against an undeclared bit.
	MutConstObserved bool

	Calls []CallSite
}

// Unresolved is the deadline fallback: nothing proven, nothing assumed.
func Unresolved() Facts {
	return Facts{
		Abnormal:  attrs.Unverifiable,
		MutConst:  attrs.Unverifiable,
		Registers: attrs.Unverifiable,
	}
}

// Infer computes the three local facts of one function body.
func (e *Engine) Infer(fn *prog.Function) Facts {
	if len(fn.Blocks) == 0 {
		// Declaration-only symbol: the body is opaque to us.
		return Unresolved()
	}

	reach := reachableBlocks(fn)

	facts := Facts{
		Abnormal:  attrs.ProvenFalse,
		MutConst:  attrs.ProvenTrue,
		Registers: attrs.ProvenFalse,
	}

	type allocSite struct {
		block int
		instr int
	}
	var allocs []allocSite

	for _, bi := range reach {
		b := &fn.Blocks[bi]

		if b.Abnormal {
			// The block's own outgoing transfer leaves the function abnormally.
			facts.Abnormal = attrs.Join(facts.Abnormal, attrs.ProvenTrue)
		}

		for ii := range b.Instrs {
			in := &b.Instrs[ii]
			switch in.Op {
			case prog.OpCall:
				if in.Callee != "" {
					facts.Calls = append(facts.Calls, CallSite{
						Callee:  in.Callee,
						Guarded: in.Guarded,
						Pos:     in.Pos,
					})
					continue
				}

				e.tracePrimitive(fn, in, &facts, func() {
					allocs = append(allocs, allocSite{block: bi, instr: ii})
				})

			case prog.OpWrite:
				grade, hidden := e.classifyWrite(in)
				facts.MutConst = attrs.Meet(facts.MutConst, grade)
				if hidden {
					facts.MutConstObserved = true
				}
			}
		}
	}

	for _, site := range allocs {
		facts.Registers = attrs.Join(facts.Registers, e.mustRegister(fn, site.block, site.instr))
	}

	return facts
}

// tracePrimitive folds one primitive call into the facts.
func (e *Engine) tracePrimitive(fn *prog.Function, in *prog.Instr, facts *Facts, onAlloc func()) {
	name := in.Primitive

	switch {
	case e.pol.IsAbnormal(name):
		if !in.Guarded {
			facts.Abnormal = attrs.Join(facts.Abnormal, attrs.ProvenTrue)
		}

	case e.pol.IsAlloc(name):
		if resourceCandidate(fn, in) {
			onAlloc()
		}

	case e.pol.IsRegister(name), e.pol.IsGuard(name), e.pol.IsKnown(name):
		// Recognized and harmless in this position.

	default:
		// Opaque primitive: it may not return, and through any pointer
		// argument it may write whatever it pleases.
		if !in.Guarded {
			facts.Abnormal = attrs.Join(facts.Abnormal, attrs.Unverifiable)
		}
		for _, a := range in.PtrArgs {
			if a >= 0 || a == prog.WriteEscaped {
				facts.MutConst = attrs.Meet(facts.MutConst, attrs.Unverifiable)
				break
			}
		}
	}
}

// classifyWrite grades one store against the mutably-constant contract and
// reports whether it witnesses an actual hidden-state mutation.
func (e *Engine) classifyWrite(in *prog.Instr) (attrs.Confidence, bool) {
	switch {
	case in.Param == prog.WriteLocal:
		// Function-local memory is never observable.
		return attrs.ProvenTrue, false

	case in.Param == prog.WriteEscaped:
		return attrs.Unverifiable, false

	case in.Param == 0:
		if e.pol.IsHiddenField(in.Type, in.Field) {
			return attrs.ProvenTrue, true
		}
		return attrs.ProvenFalse, false

	default:
		// A store reachable from a non-first parameter breaks the contract outright.
		return attrs.ProvenFalse, false
	}
}

// resourceCandidate decides whether an allocation produces the resource the
// registersResource bit is about, honoring the per-function ownership hint.
func resourceCandidate(fn *prog.Function, in *prog.Instr) bool {
	switch fn.Resource {
	case prog.ResourceNone:
		return false
	case prog.ResourceReturn:
		return in.Dest == prog.DestReturn
	case prog.ResourceOutParam:
		return in.Dest == prog.DestOutParam && in.DestParam == fn.ResourceParam
	default:
		// Convention fallback: the primary return value, or the first
		// writable out-argument.
		if in.Dest == prog.DestReturn {
			return true
		}
		if in.Dest == prog.DestOutParam {
			return in.DestParam == firstOutParam(fn)
		}
		return false
	}
}

func firstOutParam(fn *prog.Function) int {
	for i, p := range fn.Params {
		if p.Pointer && !p.Const {
			return i
		}
	}

	return -1
}
