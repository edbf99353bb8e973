package eval

import (
	"fmt"

	"luax/ast"
)

// The resolver classifies every identifier occurrence once, before
// execution: as a frame slot, an upvalue index, or a global. The evaluator
// then reaches variables through cells directly and never looks a local up
// by name at run time. Slots are never reused; a declaration executed again
// (a loop body) installs a fresh cell in its slot each pass.

type bindKind int

const (
	bindGlobal bindKind = iota // zero value: unresolved names are globals
	bindLocal
	bindUpval
)

type binding struct {
	kind  bindKind
	index int
}

// upvalDesc says where a closure finds one captured cell at creation time:
// in the creating frame's slots, or in the creating closure's own upvalues.
type upvalDesc struct {
	name      string
	fromLocal bool
	index     int
}

// protoInfo is the resolved form of one function body
type protoInfo struct {
	params    []string
	vararg    bool
	nSlots    int
	upvals    []upvalDesc
	bindings  map[*ast.NameExpr]binding
	declSlots map[ast.Stmt][]int
}

// Program is a resolved chunk ready to run
type Program struct {
	fn    *ast.FunctionExpr // the chunk body as a vararg function
	infos map[*ast.FunctionExpr]*protoInfo
	names map[*ast.FunctionExpr]string
}

// funcScope tracks the resolver's position inside one function
type funcScope struct {
	parent    *funcScope
	info      *protoInfo
	blocks    []map[string]int
	loopDepth int
}

type resolver struct {
	infos map[*ast.FunctionExpr]*protoInfo
	names map[*ast.FunctionExpr]string
}

// resolveChunk resolves a chunk body. The chunk itself is a vararg
// function, so top level "..." refers to the run arguments.
func resolveChunk(chunk []ast.Stmt) (*Program, error) {
	fn := &ast.FunctionExpr{Vararg: true, Body: chunk}
	r := &resolver{
		infos: make(map[*ast.FunctionExpr]*protoInfo),
		names: make(map[*ast.FunctionExpr]string),
	}
	if err := r.walkFunc(nil, fn); err != nil {
		return nil, err
	}
	return &Program{fn: fn, infos: r.infos, names: r.names}, nil
}

func newProtoInfo(fn *ast.FunctionExpr) *protoInfo {
	return &protoInfo{
		params:    fn.Params,
		vararg:    fn.Vararg,
		bindings:  make(map[*ast.NameExpr]binding),
		declSlots: make(map[ast.Stmt][]int),
	}
}

func (r *resolver) walkFunc(parent *funcScope, fn *ast.FunctionExpr) error {
	info := newProtoInfo(fn)
	r.infos[fn] = info
	fs := &funcScope{parent: parent, info: info}
	fs.pushBlock()
	for _, p := range fn.Params {
		fs.declare(p)
	}
	if err := r.walkBlock(fs, fn.Body); err != nil {
		return err
	}
	fs.popBlock()
	return nil
}

func (fs *funcScope) pushBlock() {
	fs.blocks = append(fs.blocks, make(map[string]int))
}

func (fs *funcScope) popBlock() {
	fs.blocks = fs.blocks[:len(fs.blocks)-1]
}

// declare allocates a fresh slot for a name in the innermost block
func (fs *funcScope) declare(name string) int {
	slot := fs.info.nSlots
	fs.info.nSlots++
	fs.blocks[len(fs.blocks)-1][name] = slot
	return slot
}

// lookupLocal finds a name in the enclosing blocks of this function
func (fs *funcScope) lookupLocal(name string) (int, bool) {
	for i := len(fs.blocks) - 1; i >= 0; i-- {
		if slot, ok := fs.blocks[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// captureUpval resolves a free name against enclosing functions, recording
// an upvalue descriptor chain through every intermediate function.
func captureUpval(fs *funcScope, name string) (int, bool) {
	if fs.parent == nil {
		return 0, false
	}
	for i, d := range fs.info.upvals {
		if d.name == name {
			return i, true
		}
	}
	if slot, ok := fs.parent.lookupLocal(name); ok {
		fs.info.upvals = append(fs.info.upvals, upvalDesc{name: name, fromLocal: true, index: slot})
		return len(fs.info.upvals) - 1, true
	}
	if idx, ok := captureUpval(fs.parent, name); ok {
		fs.info.upvals = append(fs.info.upvals, upvalDesc{name: name, fromLocal: false, index: idx})
		return len(fs.info.upvals) - 1, true
	}
	return 0, false
}

func (r *resolver) bindName(fs *funcScope, ne *ast.NameExpr) {
	if slot, ok := fs.lookupLocal(ne.Name); ok {
		fs.info.bindings[ne] = binding{kind: bindLocal, index: slot}
		return
	}
	if idx, ok := captureUpval(fs, ne.Name); ok {
		fs.info.bindings[ne] = binding{kind: bindUpval, index: idx}
		return
	}
	fs.info.bindings[ne] = binding{kind: bindGlobal}
}

func (r *resolver) walkBlock(fs *funcScope, stmts []ast.Stmt) error {
	fs.pushBlock()
	defer fs.popBlock()
	for _, s := range stmts {
		if err := r.walkStmt(fs, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) walkStmt(fs *funcScope, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.DoStmt:
		return r.walkBlock(fs, s.Body)

	case *ast.SetStmt:
		// a lone "name = function" gives the closure a debug name
		if len(s.Targets) == 1 && len(s.Values) == 1 {
			if ne, ok := s.Targets[0].(*ast.NameExpr); ok {
				if fe, ok := s.Values[0].(*ast.FunctionExpr); ok {
					r.names[fe] = ne.Name
				}
			}
		}
		if err := r.walkExprs(fs, s.Values); err != nil {
			return err
		}
		for _, t := range s.Targets {
			if err := r.walkExpr(fs, t); err != nil {
				return err
			}
		}
		return nil

	case *ast.WhileStmt:
		if err := r.walkExpr(fs, s.Cond); err != nil {
			return err
		}
		fs.loopDepth++
		defer func() { fs.loopDepth-- }()
		return r.walkBlock(fs, s.Body)

	case *ast.RepeatStmt:
		// the until condition is resolved inside the body scope
		fs.loopDepth++
		defer func() { fs.loopDepth-- }()
		fs.pushBlock()
		defer fs.popBlock()
		for _, bs := range s.Body {
			if err := r.walkStmt(fs, bs); err != nil {
				return err
			}
		}
		return r.walkExpr(fs, s.Cond)

	case *ast.IfStmt:
		for _, c := range s.Clauses {
			if err := r.walkExpr(fs, c.Cond); err != nil {
				return err
			}
			if err := r.walkBlock(fs, c.Body); err != nil {
				return err
			}
		}
		return r.walkBlock(fs, s.Else)

	case *ast.NumForStmt:
		if err := r.walkExpr(fs, s.Start); err != nil {
			return err
		}
		if err := r.walkExpr(fs, s.Limit); err != nil {
			return err
		}
		if s.Step != nil {
			if err := r.walkExpr(fs, s.Step); err != nil {
				return err
			}
		}
		fs.loopDepth++
		defer func() { fs.loopDepth-- }()
		fs.pushBlock()
		defer fs.popBlock()
		fs.info.declSlots[s] = []int{fs.declare(s.Name)}
		return r.walkBlock(fs, s.Body)

	case *ast.GenForStmt:
		if err := r.walkExprs(fs, s.Exprs); err != nil {
			return err
		}
		fs.loopDepth++
		defer func() { fs.loopDepth-- }()
		fs.pushBlock()
		defer fs.popBlock()
		slots := make([]int, len(s.Names))
		for i, name := range s.Names {
			slots[i] = fs.declare(name)
		}
		fs.info.declSlots[s] = slots
		return r.walkBlock(fs, s.Body)

	case *ast.LocalStmt:
		// initializers see the outer bindings: local x = x reads old x
		if len(s.Names) == 1 && len(s.Values) == 1 {
			if fe, ok := s.Values[0].(*ast.FunctionExpr); ok {
				r.names[fe] = s.Names[0]
			}
		}
		if err := r.walkExprs(fs, s.Values); err != nil {
			return err
		}
		slots := make([]int, len(s.Names))
		for i, name := range s.Names {
			slots[i] = fs.declare(name)
		}
		fs.info.declSlots[s] = slots
		return nil

	case *ast.LocalFuncStmt:
		// the name is declared before the body resolves, so the body's
		// references to it are self references
		fs.info.declSlots[s] = []int{fs.declare(s.Name)}
		r.names[s.Fn] = s.Name
		return r.walkFunc(fs, s.Fn)

	case *ast.ReturnStmt:
		return r.walkExprs(fs, s.Values)

	case *ast.BreakStmt:
		if fs.loopDepth == 0 {
			return fmt.Errorf("break outside a loop")
		}
		return nil

	case *ast.CallStmt:
		return r.walkExpr(fs, s.Call)

	case *ast.GotoStmt, *ast.LabelStmt:
		// admitted by the grammar, rejected when a goto executes
		return nil
	}
	return fmt.Errorf("malformed tree: unknown statement %T", stmt)
}

func (r *resolver) walkExprs(fs *funcScope, exprs []ast.Expr) error {
	for _, e := range exprs {
		if err := r.walkExpr(fs, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) walkExpr(fs *funcScope, expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.NilExpr, *ast.BoolExpr, *ast.NumberExpr, *ast.StringExpr:
		return nil

	case *ast.VarargExpr:
		if !fs.info.vararg {
			return fmt.Errorf("cannot use '...' outside a vararg function")
		}
		return nil

	case *ast.NameExpr:
		r.bindName(fs, e)
		return nil

	case *ast.IndexExpr:
		if err := r.walkExpr(fs, e.Object); err != nil {
			return err
		}
		return r.walkExpr(fs, e.Key)

	case *ast.CallExpr:
		if err := r.walkExpr(fs, e.Fn); err != nil {
			return err
		}
		return r.walkExprs(fs, e.Args)

	case *ast.InvokeExpr:
		if err := r.walkExpr(fs, e.Object); err != nil {
			return err
		}
		return r.walkExprs(fs, e.Args)

	case *ast.FunctionExpr:
		return r.walkFunc(fs, e)

	case *ast.TableExpr:
		for _, item := range e.Items {
			if p, ok := item.(*ast.PairExpr); ok {
				if err := r.walkExpr(fs, p.Key); err != nil {
					return err
				}
				if err := r.walkExpr(fs, p.Value); err != nil {
					return err
				}
				continue
			}
			if err := r.walkExpr(fs, item); err != nil {
				return err
			}
		}
		return nil

	case *ast.PairExpr:
		return fmt.Errorf("malformed tree: pair entry outside a table constructor")

	case *ast.BinaryExpr:
		if err := r.walkExpr(fs, e.L); err != nil {
			return err
		}
		return r.walkExpr(fs, e.R)

	case *ast.UnaryExpr:
		return r.walkExpr(fs, e.Operand)

	case *ast.ParenExpr:
		return r.walkExpr(fs, e.Inner)
	}
	return fmt.Errorf("malformed tree: unknown expression %T", expr)
}
