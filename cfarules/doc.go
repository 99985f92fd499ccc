// Package cfarules defines the canonical CFA-series rule codes enforced by cfacheck.
//
// Each rule represents a verifiable invariant of the suffix naming convention.
// The CFA-series provides a stable numeric and textual identity for every rule,
// ensuring that violations can be reported, filtered, and traced consistently
// across analysis phases and rendering tools.
//
// # Structure
//
// Rule codes follow the format “CFA<NNN>: <Name>” and are grouped by functional area:
//
//	000–099  Suffix decoding rules
//	100–199  Per-function contract comparison rules
//	200–299  Whole-program invariant rules
//
// Example:
//
//	cfarules.CFA100OverpromisedContract.String()      → "CFA100: OverpromisedContract"
//	cfarules.CFA100OverpromisedContract.Description() → "Declared attribute bit is disproved by the function's body."
//
// # Notes
//
//   - Rule identifiers are stable; never renumber existing codes.
//   - New rules must take the next available slot of their range.
package cfarules
