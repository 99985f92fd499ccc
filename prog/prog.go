// Package prog defines the analysis input model the external front end supplies:
// function symbols with parameter qualifications and bodies lowered into a
// control-flow graph of basic blocks with designated call and write operations.
//
// The entities in this package provide a consistent vocabulary for behavior
// inference without binding the analyzer to any concrete host language.
package prog

import (
	"fmt"
)

// Pos locates a declaration or an instruction in front-end source.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}

	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Snapshot is one immutable analysis input: every function symbol of a run.
type Snapshot struct {
	Functions []*Function
}

// ByIdent indexes functions by identifier. Duplicate identifiers are a
// snapshot defect caught by Validate; the last one wins here.
func (s *Snapshot) ByIdent() map[string]*Function {
	m := make(map[string]*Function, len(s.Functions))
	for _, fn := range s.Functions {
		m[fn.Ident] = fn
	}

	return m
}

// Function is a single symbol with its lowered body. Immutable once loaded.
type Function struct {
	Ident  string
	Pos    Pos
	Params []Param

	// Blocks is the body's control-flow graph. Blocks[0] is the entry.
	// A nil/empty body means the symbol is opaque (declaration only).
	Blocks []Block

	// Resource overrides the registered-resource ownership heuristic.
	Resource ResourceHint

	// ResourceParam is the out-parameter index when Resource is ResourceOutParam.
	ResourceParam int
}

// Param describes one parameter's pointer/const qualification.
type Param struct {
	Name    string
	Type    string
	Pointer bool
	Const   bool
}

// ResourceHint selects which allocation a function's registersResource bit is about.
type ResourceHint uint8

const (
	// ResourceDefault is the convention's fallback: the primary return
	// value, or the first writable out-argument when nothing is returned.
	ResourceDefault ResourceHint = iota

	// ResourceReturn pins the registered resource to the return value.
	ResourceReturn

	// ResourceOutParam pins it to the out-parameter at ResourceParam.
	ResourceOutParam

	// ResourceNone states the function owns no registerable resource.
	ResourceNone
)

func (h ResourceHint) String() string {
	switch h {
	case ResourceDefault:
		return "default"
	case ResourceReturn:
		return "return"
	case ResourceOutParam:
		return "out-param"
	case ResourceNone:
		return "none"
	default:
		return fmt.Sprintf("invalid-resource-hint(%d)", uint8(h))
	}
}

// Block is one basic block of a lowered body.
type Block struct {
	Instrs []Instr

	// Succs are indices into Function.Blocks reachable via normal transfer.
	Succs []int

	// Abnormal marks a block whose outgoing transfer leaves the function
	// abnormally instead of flowing to a successor or returning.
	Abnormal bool
}

// Op discriminates the instruction kinds the analysis cares about.
type Op uint8

const (
	opInvalid Op = iota

	// OpCall invokes either a callee symbol or an external primitive.
	OpCall

	// OpWrite stores through a pointer the front end attributed to a
	// parameter, a local, or an escaped target.
	OpWrite
)

// Write targets that are not parameter indices.
const (
	// WriteLocal is a store into function-local memory.
	WriteLocal = -1

	// WriteEscaped is a store through a pointer the front end could not attribute.
	WriteEscaped = -2
)

// Dest says where an OpCall's produced value goes.
type Dest uint8

const (
	DestNone Dest = iota
	DestLocal
	DestReturn
	DestOutParam
)

// Instr is a single designated operation inside a block.
type Instr struct {
	Op  Op
	Pos Pos

	// Callee names another snapshot symbol; empty when Primitive is set.
	Callee string

	// Primitive is an external primitive tag; empty when Callee is set.
	Primitive string

	// Guarded marks a call site inside an exception-absorbing boundary.
	Guarded bool

	// PtrArgs are parameter indices passed by pointer into the call;
	// WriteEscaped stands for pointers the front end could not attribute.
	PtrArgs []int

	// Dest and DestParam locate the call's produced value.
	Dest      Dest
	DestParam int

	// Write target: parameter index, WriteLocal, or WriteEscaped,
	// plus the written pointee type and field.
	Param int
	Type  string
	Field string
}

// Validate checks structural sanity of a single function record.
func (f *Function) Validate() error {
	if f.Ident == "" {
		return fmt.Errorf("function with empty identifier at %s", f.Pos)
	}

	for bi, b := range f.Blocks {
		for _, succ := range b.Succs {
			if succ < 0 || succ >= len(f.Blocks) {
				return fmt.Errorf("%s: block %d successor %d out of range", f.Ident, bi, succ)
			}
		}

		for ii, in := range b.Instrs {
			switch in.Op {
			case OpCall:
				if (in.Callee == "") == (in.Primitive == "") {
					return fmt.Errorf(
						"%s: block %d instr %d must name exactly one of callee or primitive",
						f.Ident, bi, ii,
					)
				}
				for _, a := range in.PtrArgs {
					if a != WriteEscaped && (a < 0 || a >= len(f.Params)) {
						return fmt.Errorf("%s: block %d instr %d pointer argument %d out of range", f.Ident, bi, ii, a)
					}
				}
				if in.Dest == DestOutParam && (in.DestParam < 0 || in.DestParam >= len(f.Params)) {
					return fmt.Errorf("%s: block %d instr %d destination parameter %d out of range", f.Ident, bi, ii, in.DestParam)
				}
			case OpWrite:
				if in.Param != WriteLocal && in.Param != WriteEscaped && (in.Param < 0 || in.Param >= len(f.Params)) {
					return fmt.Errorf("%s: block %d instr %d write target %d out of range", f.Ident, bi, ii, in.Param)
				}
			default:
				return fmt.Errorf("%s: block %d instr %d has invalid op %d", f.Ident, bi, ii, in.Op)
			}
		}
	}

	if f.Resource == ResourceOutParam && (f.ResourceParam < 0 || f.ResourceParam >= len(f.Params)) {
		return fmt.Errorf("%s: resource out-parameter %d out of range", f.Ident, f.ResourceParam)
	}

	return nil
}

// Validate checks the whole snapshot, including identifier uniqueness.
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Functions))
	for _, fn := range s.Functions {
		if err := fn.Validate(); err != nil {
			return err
		}

		if _, ok := seen[fn.Ident]; ok {
			return fmt.Errorf("duplicate function identifier %q", fn.Ident)
		}
		seen[fn.Ident] = struct{}{}
	}

	return nil
}
