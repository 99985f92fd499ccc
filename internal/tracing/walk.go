package tracing

import (
	"cfacheck/attrs"
	"cfacheck/prog"
)

// reachableBlocks walks the block graph with an explicit DFS stack and
// returns the indices of blocks reachable from the entry, in visit order.
func reachableBlocks(fn *prog.Function) []int {
	if len(fn.Blocks) == 0 {
		return nil
	}

	stack := []int{0}
	seen := make(map[int]bool, len(fn.Blocks))
	var order []int

	for len(stack) > 0 {
		n := len(stack) - 1
		bi := stack[n]
		stack = stack[:n]

		if seen[bi] {
			continue
		}
		seen[bi] = true
		order = append(order, bi)

		for _, succ := range fn.Blocks[bi].Succs {
			stack = append(stack, succ)
		}
	}

	return order
}

// mustRegister explores every path from the allocation at (block, instr) to a
// function exit. Each path is explored once with an isolated state copy.
//
// Outcome per the convention:
//
//   - every normally-exiting path passes a registration primitive → proven-true;
//   - some normally-exiting path provably skips registration → proven-false;
//   - a skipping path crossed an opaque primitive → unverifiable;
//   - paths ending in an abnormal exit are excused.
func (e *Engine) mustRegister(fn *prog.Function, block, instr int) attrs.Confidence {
	type frame struct {
		block int
		start int
		state *pathState
	}

	result := attrs.ProvenTrue

	stack := []frame{{block: block, start: instr + 1, state: &pathState{}}}
	visited := make(map[int]bool, len(fn.Blocks))

	for len(stack) > 0 {
		n := len(stack) - 1
		f := stack[n]
		stack = stack[:n]

		// The initial frame starts mid-block and must always run; whole
		// blocks are interpreted at most once.
		if f.start == 0 {
			if visited[f.block] {
				continue
			}
			visited[f.block] = true
		}

		b := &fn.Blocks[f.block]
		state := f.state.Clone()

		registered := false
		excused := false
	scan:
		for ii := f.start; ii < len(b.Instrs); ii++ {
			in := &b.Instrs[ii]
			if in.Op != prog.OpCall || in.Callee != "" {
				continue
			}

			name := in.Primitive
			switch {
			case e.pol.IsRegister(name):
				registered = true
				break scan
			case e.pol.IsAbnormal(name) && !in.Guarded:
				excused = true
				break scan
			case !e.pol.IsKnown(name):
				state.sawOpaque = true
			}
		}

		if registered || excused {
			continue
		}

		if b.Abnormal {
			// Abnormal outgoing transfer excuses the path.
			continue
		}

		if len(b.Succs) == 0 {
			// Normal exit reached with the allocation still unregistered.
			if !state.sawOpaque {
				return attrs.ProvenFalse
			}
			result = attrs.Meet(result, attrs.Unverifiable)
			continue
		}

		for _, succ := range b.Succs {
			stack = append(stack, frame{block: succ, state: state.Clone()})
		}
	}

	return result
}
