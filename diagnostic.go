package cfacheck

import (
	"fmt"
	"sort"

	"cfacheck/attrs"
	"cfacheck/cfarules"
	"cfacheck/prog"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Diagnostic is a single finding. Created once, never mutated after creation.
type Diagnostic struct {
	Phase    Phase
	Rule     cfarules.Rule
	Severity Severity
	Pos      prog.Pos

	// Func is the identifier of the function the finding is about.
	Func string

	// Bit names the attribute the finding concerns; zero for findings that
	// are not bit-specific (malformed suffixes).
	Bit attrs.Bit

	// Declared is the suffix-declared value of Bit; nil when no valid
	// declaration exists.
	Declared *bool

	// Inferred is the analysis outcome for Bit; meaningful only when
	// Declared is set.
	Inferred attrs.Confidence

	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s (%s)", d.Severity, d.Rule, d.Func, d.Message, d.Pos)
}

// sortDiagnostics orders findings by file, line, column, function identifier,
// attribute bit, rule code; stable and independent of worker scheduling.
func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		di, dj := ds[i], ds[j]
		if di.Pos.File != dj.Pos.File {
			return di.Pos.File < dj.Pos.File
		}
		if di.Pos.Line != dj.Pos.Line {
			return di.Pos.Line < dj.Pos.Line
		}
		if di.Pos.Col != dj.Pos.Col {
			return di.Pos.Col < dj.Pos.Col
		}
		if di.Func != dj.Func {
			return di.Func < dj.Func
		}
		if di.Bit != dj.Bit {
			return di.Bit < dj.Bit
		}
		return di.Rule < dj.Rule
	})
}
