package attrs

import "fmt"

// Confidence is the tri-state outcome of inferring one attribute bit.
//
// The numeric order ProvenFalse < Unverifiable < ProvenTrue doubles as the
// join lattice for existential facts (any path proving true wins) while its
// dual, Meet, serves universal facts (any write disproving wins).
type Confidence uint8

const (
	// ProvenFalse means analysis disproved the behavior on every path.
	ProvenFalse Confidence = iota

	// Unverifiable means some path could not be fully resolved; the fact
	// is conservatively left undecided rather than assumed either way.
	Unverifiable

	// ProvenTrue means analysis proved the behavior on some path
	// (existential facts) or on all paths (universal facts).
	ProvenTrue
)

func (c Confidence) String() string {
	switch c {
	case ProvenFalse:
		return "proven-false"
	case Unverifiable:
		return "unverifiable"
	case ProvenTrue:
		return "proven-true"
	default:
		return fmt.Sprintf("invalid-confidence(%d)", uint8(c))
	}
}

// Join combines existential evidence: a single proof of truth dominates.
func Join(a, b Confidence) Confidence {
	if a > b {
		return a
	}

	return b
}

// Meet combines universal evidence: a single disproof dominates.
func Meet(a, b Confidence) Confidence {
	if a < b {
		return a
	}

	return b
}
