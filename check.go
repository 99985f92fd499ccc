package cfacheck

import (
	"fmt"

	"cfacheck/attrs"
	"cfacheck/cfarules"
	"cfacheck/internal/tracing"
	"cfacheck/prog"
)

// checker compares declared attribute sets against inferred facts.
type checker struct {
	r *phaseReporter

	// aborted is set when the run's deadline cut analysis short. A declared
	// bit left unverifiable is then reported even when declared false: an
	// unconverged fact must never read as a silent pass.
	aborted bool
}

func (c *checker) check(fn *prog.Function, declared attrs.AttributeSet, local tracing.Facts, abnormal attrs.Confidence) {
	c.checkAbnormal(fn, declared, local, abnormal)
	c.checkMutablyConst(fn, declared, local)
	c.checkRegisters(fn, declared, local)
}

// checkAbnormal handles the one bit whose fact crosses function boundaries.
// An under-promise coming from the function's own body is an ordinary
// contract violation; one arriving through unguarded callees breaks the
// totality promise of the _c0 family and gets its own rule. Both are errors:
// callers relying on fire-and-forget semantics are silently exposed otherwise.
func (c *checker) checkAbnormal(fn *prog.Function, declared attrs.AttributeSet, local tracing.Facts, abnormal attrs.Confidence) {
	bit := attrs.BitMayAbnormallyExit

	if declared.MayAbnormallyExit {
		switch abnormal {
		case attrs.ProvenFalse:
			c.report(fn, cfarules.OverpromisedContract(), SevError, bit, true, abnormal,
				"suffix declares a possible abnormal exit yet every path provably returns")
		case attrs.Unverifiable:
			c.report(fn, cfarules.UnverifiableAttribute(), SevWarning, bit, true, abnormal, "")
		}
		return
	}

	if abnormal == attrs.Unverifiable && c.aborted {
		c.report(fn, cfarules.UnverifiableAttribute(), SevWarning, bit, false, abnormal,
			"analysis deadline expired before the fact converged")
		return
	}

	if abnormal != attrs.ProvenTrue {
		return
	}

	if local.Abnormal == attrs.ProvenTrue {
		c.report(fn, cfarules.UnderpromisedContract(), SevError, bit, false, abnormal,
			"body reaches an abnormal exit although the suffix promises an ordinary return")
		return
	}

	c.report(fn, cfarules.TotalityBreach(), SevError, bit, false, abnormal,
		"promises totality yet an unguarded callee abnormally exits on some path")
}

func (c *checker) checkMutablyConst(fn *prog.Function, declared attrs.AttributeSet, local tracing.Facts) {
	bit := attrs.BitMutablyConst

	if declared.MutablyConst && firstParamReadOnly(fn) {
		// The language already enforces what the suffix promises;
		// the declared bit is moot, not wrong.
		c.report(fn, cfarules.RedundantAttribute(), SevInfo, bit, true, local.MutConst,
			"mutablyConst is moot: the first parameter is already a read-only pointer")
		return
	}

	inferred := local.MutConst
	if inferred == attrs.ProvenTrue && !local.MutConstObserved {
		// Vacuously constant: no hidden-state write was ever witnessed,
		// so an undeclared bit has nothing to under-promise about.
		if !declared.MutablyConst {
			return
		}
	}

	c.compareLocal(fn, bit, declared.MutablyConst, inferred)
}

func (c *checker) checkRegisters(fn *prog.Function, declared attrs.AttributeSet, local tracing.Facts) {
	c.compareLocal(fn, attrs.BitRegistersResource, declared.RegistersResource, local.Registers)
}

// compareLocal applies the common declared-versus-inferred table for facts
// that are complete without propagation.
func (c *checker) compareLocal(fn *prog.Function, bit attrs.Bit, declared bool, inferred attrs.Confidence) {
	if declared {
		switch inferred {
		case attrs.ProvenFalse:
			c.report(fn, cfarules.OverpromisedContract(), SevError, bit, true, inferred,
				fmt.Sprintf("suffix declares %s yet the body disproves it", bit))
		case attrs.Unverifiable:
			c.report(fn, cfarules.UnverifiableAttribute(), SevWarning, bit, true, inferred,
				fmt.Sprintf("declared %s can be neither proven nor disproven", bit))
		}
		return
	}

	switch {
	case inferred == attrs.ProvenTrue:
		c.report(fn, cfarules.UnderpromisedContract(), SevError, bit, false, inferred,
			fmt.Sprintf("body proves %s although the suffix denies it", bit))
	case inferred == attrs.Unverifiable && c.aborted:
		c.report(fn, cfarules.UnverifiableAttribute(), SevWarning, bit, false, inferred,
			"analysis deadline expired before the fact converged")
	}
}

func (c *checker) report(
	fn *prog.Function,
	rule cfarules.Rule,
	sev Severity,
	bit attrs.Bit,
	declared bool,
	inferred attrs.Confidence,
	msg string,
) {
	d := declared
	c.r.Report(Diagnostic{
		Rule:     rule,
		Severity: sev,
		Pos:      fn.Pos,
		Func:     fn.Ident,
		Bit:      bit,
		Declared: &d,
		Inferred: inferred,
		Message:  msg,
	})
}

func firstParamReadOnly(fn *prog.Function) bool {
	if len(fn.Params) == 0 {
		return false
	}

	p := fn.Params[0]
	return p.Pointer && p.Const
}
