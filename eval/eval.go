package eval

import (
	"luax/ast"
	"luax/types"
)

// evalExpr evaluates an expression to its full value list. Only calls,
// method invokes and ... produce more than one value; every other node
// yields exactly one.
func (in *Interp) evalExpr(ctx *types.Context, fr *frame, e ast.Expr) types.Result {
	switch n := e.(type) {
	case *ast.NilExpr:
		return types.Ok(types.Nil)
	case *ast.BoolExpr:
		return types.Ok(types.NewBool(n.Value))
	case *ast.NumberExpr:
		return types.Ok(types.NewNumber(n.Value))
	case *ast.StringExpr:
		return types.Ok(types.NewStr(n.Value))
	case *ast.VarargExpr:
		return types.OkMulti(fr.varargs)
	case *ast.NameExpr:
		return in.name(ctx, fr, n)
	case *ast.IndexExpr:
		return in.index(ctx, fr, n)
	case *ast.CallExpr:
		return in.callExpr(ctx, fr, n)
	case *ast.InvokeExpr:
		return in.invokeExpr(ctx, fr, n)
	case *ast.FunctionExpr:
		return in.makeClosure(ctx, fr, n)
	case *ast.TableExpr:
		return in.tableCtor(ctx, fr, n)
	case *ast.BinaryExpr:
		return in.binary(ctx, fr, n)
	case *ast.UnaryExpr:
		return in.unary(ctx, fr, n)
	case *ast.ParenExpr:
		return in.evalSingle(ctx, fr, n.Inner)
	}
	return in.throwf(ctx, "malformed tree: unknown expression %T", e)
}

// evalSingle evaluates an expression adjusted to exactly one value
func (in *Interp) evalSingle(ctx *types.Context, fr *frame, e ast.Expr) types.Result {
	res := in.evalExpr(ctx, fr, e)
	if !res.IsNormal() {
		return res
	}
	return types.Ok(res.First())
}

// isMultiExpr reports whether an expression can produce several values
func isMultiExpr(e ast.Expr) bool {
	switch e.(type) {
	case *ast.CallExpr, *ast.InvokeExpr, *ast.VarargExpr:
		return true
	}
	return false
}

// evalExprList evaluates an argument or value list. Every position is
// adjusted to one value except the last, which spreads when it is a call
// or ....
func (in *Interp) evalExprList(ctx *types.Context, fr *frame, exprs []ast.Expr) ([]types.Value, types.Result) {
	vals := make([]types.Value, 0, len(exprs))
	for i, e := range exprs {
		if i == len(exprs)-1 && isMultiExpr(e) {
			res := in.evalExpr(ctx, fr, e)
			if !res.IsNormal() {
				return nil, res
			}
			vals = append(vals, res.Vals...)
			break
		}
		res := in.evalSingle(ctx, fr, e)
		if !res.IsNormal() {
			return nil, res
		}
		vals = append(vals, res.First())
	}
	return vals, types.None()
}

// adjust resizes a value list to exactly n, padding with nil
func adjust(vals []types.Value, n int) []types.Value {
	out := make([]types.Value, n)
	for i := range out {
		if i < len(vals) {
			out[i] = vals[i]
		} else {
			out[i] = types.Nil
		}
	}
	return out
}

// name reads a variable through its resolved binding
func (in *Interp) name(ctx *types.Context, fr *frame, e *ast.NameExpr) types.Result {
	b := fr.info.bindings[e]
	switch b.kind {
	case bindLocal:
		return types.Ok(fr.cells[b.index].V)
	case bindUpval:
		return types.Ok(fr.upvals[b.index].V)
	}
	return in.indexValue(ctx, in.globalsFor(ctx), types.NewStr(e.Name))
}

// index evaluates obj[key]
func (in *Interp) index(ctx *types.Context, fr *frame, e *ast.IndexExpr) types.Result {
	obj := in.evalSingle(ctx, fr, e.Object)
	if !obj.IsNormal() {
		return obj
	}
	key := in.evalSingle(ctx, fr, e.Key)
	if !key.IsNormal() {
		return key
	}
	return in.indexValue(ctx, obj.First(), key.First())
}

// callExpr evaluates fn(args...)
func (in *Interp) callExpr(ctx *types.Context, fr *frame, e *ast.CallExpr) types.Result {
	fnv := in.evalSingle(ctx, fr, e.Fn)
	if !fnv.IsNormal() {
		return fnv
	}
	args, res := in.evalExprList(ctx, fr, e.Args)
	if !res.IsNormal() {
		return res
	}
	return in.callValue(ctx, fnv.First(), args)
}

// invokeExpr evaluates obj:method(args...). The receiver is evaluated
// once, looked up with full __index dispatch, and passed first.
func (in *Interp) invokeExpr(ctx *types.Context, fr *frame, e *ast.InvokeExpr) types.Result {
	objr := in.evalSingle(ctx, fr, e.Object)
	if !objr.IsNormal() {
		return objr
	}
	obj := objr.First()
	m := in.indexValue(ctx, obj, types.NewStr(e.Method))
	if !m.IsNormal() {
		return m
	}
	args, res := in.evalExprList(ctx, fr, e.Args)
	if !res.IsNormal() {
		return res
	}
	return in.callValue(ctx, m.First(), append([]types.Value{obj}, args...))
}

// makeClosure captures the cells a function literal closes over
func (in *Interp) makeClosure(ctx *types.Context, fr *frame, fn *ast.FunctionExpr) types.Result {
	info := in.infos[fn]
	if info == nil {
		return in.throwf(ctx, "malformed tree: unresolved function literal")
	}
	ups := make([]*types.Cell, len(info.upvals))
	for i, d := range info.upvals {
		if d.fromLocal {
			ups[i] = fr.cells[d.index]
		} else {
			ups[i] = fr.upvals[d.index]
		}
	}
	return types.Ok(&types.Closure{Proto: fn, Upvals: ups, Name: in.names[fn]})
}

// tableCtor builds a table from a constructor: keyed pairs store at their
// keys, list items at successive integers, and a trailing call or ...
// spreads all its values.
func (in *Interp) tableCtor(ctx *types.Context, fr *frame, e *ast.TableExpr) types.Result {
	t := types.NewTable()
	n := 0
	for i, item := range e.Items {
		if p, ok := item.(*ast.PairExpr); ok {
			k := in.evalSingle(ctx, fr, p.Key)
			if !k.IsNormal() {
				return k
			}
			v := in.evalSingle(ctx, fr, p.Value)
			if !v.IsNormal() {
				return v
			}
			if err := t.RawSet(k.First(), v.First()); err != nil {
				return in.throwf(ctx, "%s", err)
			}
			continue
		}
		if i == len(e.Items)-1 && isMultiExpr(item) {
			res := in.evalExpr(ctx, fr, item)
			if !res.IsNormal() {
				return res
			}
			for _, v := range res.Vals {
				n++
				t.RawSetInt(n, v)
			}
			continue
		}
		v := in.evalSingle(ctx, fr, item)
		if !v.IsNormal() {
			return v
		}
		n++
		t.RawSetInt(n, v.First())
	}
	return types.Ok(t)
}

// binary evaluates a binary operation; and/or short-circuit through
// logical, everything else evaluates both operands first.
func (in *Interp) binary(ctx *types.Context, fr *frame, e *ast.BinaryExpr) types.Result {
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		return in.logical(ctx, fr, e)
	}
	l := in.evalSingle(ctx, fr, e.L)
	if !l.IsNormal() {
		return l
	}
	r := in.evalSingle(ctx, fr, e.R)
	if !r.IsNormal() {
		return r
	}
	return in.binop(ctx, e.Op, l.First(), r.First())
}

// logical evaluates and/or with short-circuit: the result is one of the
// operand values, never a coerced boolean.
func (in *Interp) logical(ctx *types.Context, fr *frame, e *ast.BinaryExpr) types.Result {
	l := in.evalSingle(ctx, fr, e.L)
	if !l.IsNormal() {
		return l
	}
	lv := l.First()
	if e.Op == ast.OpAnd {
		if !lv.Truthy() {
			return types.Ok(lv)
		}
	} else if lv.Truthy() {
		return types.Ok(lv)
	}
	return in.evalSingle(ctx, fr, e.R)
}

// unary evaluates a unary operation
func (in *Interp) unary(ctx *types.Context, fr *frame, e *ast.UnaryExpr) types.Result {
	v := in.evalSingle(ctx, fr, e.Operand)
	if !v.IsNormal() {
		return v
	}
	return in.unop(ctx, e.Op, v.First())
}
