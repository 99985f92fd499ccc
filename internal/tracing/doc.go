// Package tracing reconstructs the three behavioral facts behind a "_c<digit>"
// suffix from a function's lowered block graph, without executing anything.
//
// Core components:
//
//   - Engine
//     Holds the compiled policy (recognized primitive sets and hidden-field
//     annotations) and computes per-function local facts.
//
//   - Path walk
//     An explicit-DFS traversal of basic blocks with an isolated state copy
//     per path, used where a fact depends on what happens between two points
//     of the flow (allocation-to-registration coverage).
//
// Abnormal-exit evidence gathered here is local only: calls to other snapshot
// symbols are recorded as call sites and resolved later by the call graph
// propagator. The other two facts are complete as computed, since they depend
// only on the function's own writes and allocations.
package tracing
