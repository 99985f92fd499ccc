// Package gofront is the reference front end: it lowers a directory of Go
// sources into the snapshot model the analyzer consumes, so the tool works
// end to end without an external producer.
//
// The lowering is syntactic. Calls resolve to snapshot callees when the name
// is declared in the loaded set and to primitives otherwise; writes are
// attributed by the shape of the assignment target. Methods and closure
// bodies other than guard regions are out of scope here.
package gofront

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/cfg"

	"cfacheck/policy"
	"cfacheck/prog"
)

// Load parses every non-test .go file of dir and lowers its top-level
// functions. The policy decides which calls terminate control flow and which
// function literals open guard regions.
func Load(dir string, pol *policy.Policy) (*prog.Snapshot, error) {
	if pol == nil {
		pol = policy.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".go") || strings.HasSuffix(n, "_test.go") {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)

	fset := token.NewFileSet()
	var files []*ast.File
	for _, n := range names {
		f, err := parser.ParseFile(fset, filepath.Join(dir, n), nil, 0)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", n, err)
		}
		files = append(files, f)
	}

	l := &lowerer{
		fset:     fset,
		pol:      pol.Compile(),
		declared: map[string]struct{}{},
	}

	var decls []*ast.FuncDecl
	for _, f := range files {
		for _, d := range f.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || fd.Recv != nil {
				continue
			}
			l.declared[fd.Name.Name] = struct{}{}
			decls = append(decls, fd)
		}
	}

	snap := &prog.Snapshot{Functions: make([]*prog.Function, 0, len(decls))}
	for _, fd := range decls {
		snap.Functions = append(snap.Functions, l.lower(fd))
	}

	return snap, nil
}

type lowerer struct {
	fset     *token.FileSet
	pol      *policy.Compiled
	declared map[string]struct{}

	// Per-function lowering state.
	params    map[string]int
	paramList []prog.Param
	guards    *guardIndex
	guardLits map[*ast.FuncLit]struct{}
	emitted   map[*ast.CallExpr]struct{}
}

func (l *lowerer) lower(fd *ast.FuncDecl) *prog.Function {
	l.params = map[string]int{}
	l.paramList = nil
	l.guards = newGuardIndex()
	l.guardLits = map[*ast.FuncLit]struct{}{}
	l.emitted = map[*ast.CallExpr]struct{}{}

	if fd.Type.Params != nil {
		for _, field := range fd.Type.Params.List {
			p := prog.Param{Type: renderType(baseType(field.Type))}
			if _, ok := field.Type.(*ast.StarExpr); ok {
				p.Pointer = true
			}
			for _, name := range field.Names {
				p.Name = name.Name
				l.params[name.Name] = len(l.paramList)
				l.paramList = append(l.paramList, p)
			}
			if len(field.Names) == 0 {
				l.paramList = append(l.paramList, p)
			}
		}
	}

	fn := &prog.Function{
		Ident:  fd.Name.Name,
		Pos:    l.pos(fd),
		Params: l.paramList,
	}

	if fd.Body == nil {
		// Declaration only: the body is opaque.
		return fn
	}

	l.collectGuards(fd.Body)

	g := cfg.New(fd.Body, func(call *ast.CallExpr) bool {
		return !l.pol.IsAbnormal(calleeName(call.Fun))
	})

	fn.Blocks = make([]prog.Block, len(g.Blocks))
	for bi, b := range g.Blocks {
		var out prog.Block
		for _, node := range b.Nodes {
			l.scan(node, &out.Instrs)
		}
		for _, succ := range b.Succs {
			out.Succs = append(out.Succs, int(succ.Index))
		}
		fn.Blocks[bi] = out
	}

	return fn
}

// collectGuards registers every G(func(){...}) region where G is a guard
// primitive. Enclosing literals are visited before nested ones, which the
// span index relies on.
func (l *lowerer) collectGuards(body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) != 1 || !l.pol.IsGuard(calleeName(call.Fun)) {
			return true
		}
		lit, ok := call.Args[0].(*ast.FuncLit)
		if !ok {
			return true
		}

		l.guardLits[lit] = struct{}{}
		l.guards.add(lit.Body.Pos(), lit.Body.End())
		return true
	})
}

// scan lowers every designated operation reachable from one CFG node.
// Statement kinds that pin a call's destination are matched first; the
// generic case picks up the calls they did not claim.
func (l *lowerer) scan(node ast.Node, out *[]prog.Instr) {
	ast.Inspect(node, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.FuncLit:
			// Guard regions are lowered in place; other closures are
			// separate functions this front end does not model.
			_, ok := l.guardLits[v]
			return ok

		case *ast.ReturnStmt:
			for _, res := range v.Results {
				if call, ok := res.(*ast.CallExpr); ok {
					l.emitCall(call, prog.DestReturn, 0, out)
				}
			}
			return true

		case *ast.AssignStmt:
			dest, destParam := l.classifyDest(v.Lhs)
			for _, rhs := range v.Rhs {
				if call, ok := rhs.(*ast.CallExpr); ok {
					l.emitCall(call, dest, destParam, out)
				}
			}
			for _, lhs := range v.Lhs {
				l.emitWrite(lhs, out)
			}
			return true

		case *ast.IncDecStmt:
			l.emitWrite(v.X, out)
			return true

		case *ast.CallExpr:
			if _, ok := l.emitted[v]; !ok {
				l.emitCall(v, prog.DestNone, 0, out)
			}
			return true
		}

		return true
	})
}

func (l *lowerer) emitCall(call *ast.CallExpr, dest prog.Dest, destParam int, out *[]prog.Instr) {
	l.emitted[call] = struct{}{}

	name := calleeName(call.Fun)
	in := prog.Instr{
		Op:        prog.OpCall,
		Pos:       l.pos(call),
		Guarded:   l.guards.covers(call.Pos()),
		Dest:      dest,
		DestParam: destParam,
	}

	switch {
	case name == "":
		// Call through an expression: behavior unknowable here.
		in.Primitive = "<indirect>"
	case l.isDeclared(call.Fun, name):
		in.Callee = name
	default:
		in.Primitive = name
	}

	for _, arg := range call.Args {
		if a, ok := l.pointerArg(arg); ok {
			in.PtrArgs = append(in.PtrArgs, a)
		}
	}

	*out = append(*out, in)
}

func (l *lowerer) isDeclared(fun ast.Expr, name string) bool {
	if _, ok := unparen(fun).(*ast.Ident); !ok {
		return false
	}
	_, ok := l.declared[name]
	return ok
}

// pointerArg attributes one call argument that hands out a pointer.
func (l *lowerer) pointerArg(arg ast.Expr) (int, bool) {
	switch v := unparen(arg).(type) {
	case *ast.Ident:
		if i, ok := l.params[v.Name]; ok && l.paramList[i].Pointer {
			return i, true
		}

	case *ast.UnaryExpr:
		if v.Op != token.AND {
			break
		}
		switch x := unparen(v.X).(type) {
		case *ast.Ident:
			if i, ok := l.params[x.Name]; ok {
				return i, true
			}
			// Address of a local never aliases a parameter.
		case *ast.SelectorExpr:
			if id, ok := unparen(x.X).(*ast.Ident); ok {
				if i, ok := l.params[id.Name]; ok {
					return i, true
				}
				return 0, false
			}
			return prog.WriteEscaped, true
		default:
			return prog.WriteEscaped, true
		}
	}

	return 0, false
}

// emitWrite attributes one assignment target.
func (l *lowerer) emitWrite(lhs ast.Expr, out *[]prog.Instr) {
	in := prog.Instr{Op: prog.OpWrite, Pos: l.pos(lhs)}

	switch v := unparen(lhs).(type) {
	case *ast.Ident:
		if v.Name == "_" {
			return
		}
		// Rebinding a name, parameter copies included, stays local.
		in.Param = prog.WriteLocal

	case *ast.StarExpr:
		in.Param, in.Type = l.pointerBase(v.X)

	case *ast.SelectorExpr:
		in.Param, in.Type = l.pointerBase(v.X)
		if in.Param >= 0 {
			in.Field = v.Sel.Name
		}

	case *ast.IndexExpr:
		in.Param, in.Type = l.pointerBase(v.X)

	default:
		in.Param = prog.WriteEscaped
	}

	*out = append(*out, in)
}

// pointerBase classifies the object a store lands in: a parameter index with
// its pointee type, local memory, or an escaped target.
func (l *lowerer) pointerBase(x ast.Expr) (int, string) {
	id, ok := unparen(x).(*ast.Ident)
	if !ok {
		return prog.WriteEscaped, ""
	}

	if i, ok := l.params[id.Name]; ok {
		return i, l.paramList[i].Type
	}

	return prog.WriteLocal, ""
}

func (l *lowerer) classifyDest(lhs []ast.Expr) (prog.Dest, int) {
	if len(lhs) != 1 {
		return prog.DestNone, 0
	}

	switch v := unparen(lhs[0]).(type) {
	case *ast.Ident:
		if v.Name == "_" {
			return prog.DestNone, 0
		}
		return prog.DestLocal, 0

	case *ast.StarExpr:
		if i, _ := l.pointerBase(v.X); i >= 0 {
			return prog.DestOutParam, i
		}

	case *ast.SelectorExpr:
		if i, _ := l.pointerBase(v.X); i >= 0 {
			return prog.DestOutParam, i
		}
	}

	return prog.DestNone, 0
}

func (l *lowerer) pos(n ast.Node) prog.Pos {
	p := l.fset.Position(n.Pos())
	return prog.Pos{File: p.Filename, Line: p.Line, Col: p.Column}
}

// calleeName renders the called name: plain identifier or a single-level
// qualified selector like "os.Exit". Anything else is an indirect call.
func calleeName(fun ast.Expr) string {
	switch v := unparen(fun).(type) {
	case *ast.Ident:
		return v.Name
	case *ast.SelectorExpr:
		if id, ok := unparen(v.X).(*ast.Ident); ok {
			return id.Name + "." + v.Sel.Name
		}
	}

	return ""
}

func baseType(t ast.Expr) ast.Expr {
	for {
		switch v := t.(type) {
		case *ast.StarExpr:
			t = v.X
		case *ast.ParenExpr:
			t = v.X
		default:
			return t
		}
	}
}

func renderType(t ast.Expr) string {
	switch v := t.(type) {
	case *ast.Ident:
		return v.Name
	case *ast.SelectorExpr:
		if id, ok := unparen(v.X).(*ast.Ident); ok {
			return id.Name + "." + v.Sel.Name
		}
	case *ast.ArrayType:
		return "[]" + renderType(v.Elt)
	}

	return "<complex>"
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
