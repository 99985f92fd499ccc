package gofront

import (
	"go/token"

	"github.com/sirkon/rbtree"
)

// guardSpan is one [start,end] region of source absorbed by a guard boundary.
type guardSpan struct {
	start token.Pos
	end   token.Pos
}

// Cmp orders disjoint spans by position. Overlapping spans compare equal so
// the tree hands the resident span back on insertion and lookup.
func (s *guardSpan) Cmp(other *guardSpan) int {
	if s.end < other.start {
		return -1
	}
	if s.start > other.end {
		return 1
	}
	return 0
}

// guardIndex answers "is this position inside a guard region" for a single
// function body.
//
// Regions arrive outer-first (the AST walk visits enclosing literals before
// nested ones), so a colliding insert is always contained in the resident
// span and adds no coverage of its own.
type guardIndex struct {
	tree *rbtree.Tree[*guardSpan]
}

func newGuardIndex() *guardIndex {
	return &guardIndex{tree: rbtree.New[*guardSpan]()}
}

func (x *guardIndex) add(start, end token.Pos) {
	s := &guardSpan{start: start, end: end}
	x.tree.InsertReturn(s)
}

func (x *guardIndex) covers(pos token.Pos) bool {
	probe := &guardSpan{start: pos, end: pos}
	return x.tree.Search(probe) != nil
}
