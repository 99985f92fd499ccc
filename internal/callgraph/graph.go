// Package callgraph builds the caller→callee relation out of analyzed bodies
// and resolves the one fact that crosses function boundaries: mayAbnormallyExit.
//
// Nodes are snapshot functions; edges are unguarded call sites. Guarded sites
// stop propagation at that edge and never enter the graph. The fact is solved
// by monotone fixed-point iteration over the ProvenFalse < Unverifiable <
// ProvenTrue lattice, which makes cycles and mutual recursion converge to the
// least solution: a cycle with no abnormal evidence of its own stays proven-false.
package callgraph

import (
	"cfacheck/attrs"
	"cfacheck/internal/tracing"
	"cfacheck/prog"
)

// Node binds one function to its local evidence and outgoing unguarded edges.
type Node struct {
	Ident string

	// base is the round-invariant part of the fact: local evidence joined
	// with unverifiable when some callee is outside the snapshot.
	base attrs.Confidence

	// callees are indices of unguarded snapshot callees.
	callees []int
}

// Graph is the whole-program call graph in function declaration order.
type Graph struct {
	nodes []Node
	index map[string]int
}

// Build derives the graph from functions and their local facts. The facts
// slice is positionally parallel to fns.
func Build(fns []*prog.Function, facts []tracing.Facts) *Graph {
	g := &Graph{
		nodes: make([]Node, len(fns)),
		index: make(map[string]int, len(fns)),
	}

	for i, fn := range fns {
		g.index[fn.Ident] = i
	}

	for i, fn := range fns {
		n := Node{
			Ident: fn.Ident,
			base:  facts[i].Abnormal,
		}

		for _, site := range facts[i].Calls {
			if site.Guarded {
				// An absorbing boundary; the callee's fate stays behind it.
				continue
			}

			j, ok := g.index[site.Callee]
			if !ok {
				// Callee is outside the snapshot: its behavior is unknowable.
				n.base = attrs.Join(n.base, attrs.Unverifiable)
				continue
			}
			n.callees = append(n.callees, j)
		}

		g.nodes[i] = n
	}

	return g
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.nodes)
}
