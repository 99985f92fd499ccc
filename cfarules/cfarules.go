package cfarules

import "fmt"

// Rule represents a cfacheck rule code (CFA-series).
type Rule int

const (
	ruleInvalid Rule = iota

	CFA000MalformedSuffix
	CFA100OverpromisedContract
	CFA110UnderpromisedContract
	CFA120UnverifiableAttribute
	CFA130RedundantAttribute
	CFA200TotalityBreach
)

// String returns the canonical code and short name of the rule.
// Example: "CFA000: MalformedSuffix"
func (r Rule) String() string {
	switch r {
	case CFA000MalformedSuffix:
		return "CFA000: MalformedSuffix"
	case CFA100OverpromisedContract:
		return "CFA100: OverpromisedContract"
	case CFA110UnderpromisedContract:
		return "CFA110: UnderpromisedContract"
	case CFA120UnverifiableAttribute:
		return "CFA120: UnverifiableAttribute"
	case CFA130RedundantAttribute:
		return "CFA130: RedundantAttribute"
	case CFA200TotalityBreach:
		return "CFA200: TotalityBreach"
	default:
		return fmt.Sprintf("rule-unknown(%d)", r)
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case CFA000MalformedSuffix:
		return "Trailing \"_c\" must be followed by exactly one digit in 0..7."
	case CFA100OverpromisedContract:
		return "Declared attribute bit is disproved by the function's body."
	case CFA110UnderpromisedContract:
		return "Function's own body proves a behavior its suffix denies."
	case CFA120UnverifiableAttribute:
		return "Declared attribute bit can be neither proven nor disproven."
	case CFA130RedundantAttribute:
		return "Declared attribute bit is logically unnecessary."
	case CFA200TotalityBreach:
		return "Function promises totality yet reaches an abnormal exit through an unguarded callee."
	default:
		return fmt.Sprintf("unknown-rule(%d)", r)
	}
}

// Canonical constructors for readability and stable call sites.

func MalformedSuffix() Rule       { return CFA000MalformedSuffix }
func OverpromisedContract() Rule  { return CFA100OverpromisedContract }
func UnderpromisedContract() Rule { return CFA110UnderpromisedContract }
func UnverifiableAttribute() Rule { return CFA120UnverifiableAttribute }
func RedundantAttribute() Rule    { return CFA130RedundantAttribute }
func TotalityBreach() Rule        { return CFA200TotalityBreach }
