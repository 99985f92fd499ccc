// Package cfacheck statically verifies that a function's trailing "_c<digit>"
// suffix matches its actual behavior.
//
// The suffix digit (0..7) encodes three independent boolean contracts: whether
// the function may leave via an abnormal, non-returning control transfer;
// whether it is observably constant on its first argument while possibly
// mutating hidden state; and whether it records every resource it allocates
// with an external registry. Callers never error-check a suffixed function:
// either it cannot fail, or it never returns on failure.
//
// The pipeline is a straight-line batch computation over a snapshot supplied
// by an external front end: decode every identifier, infer local facts per
// body in parallel, resolve abnormal-exit facts across the call graph by
// fixed-point iteration, then compare declared bits against inferred facts and
// emit diagnostics. The analyzer is fail-soft: a malformed or unresolvable
// function never aborts a run, and the output order is deterministic no
// matter how many workers computed it.
package cfacheck
