package eval

import (
	"math"

	"luax/ast"
	"luax/types"
)

// ============================================================================
// ARITHMETIC OPERATORS
// ============================================================================

// arithEvent maps an arithmetic operator to its metamethod name
func arithEvent(op ast.BinOp) string {
	switch op {
	case ast.OpAdd:
		return "__add"
	case ast.OpSub:
		return "__sub"
	case ast.OpMul:
		return "__mul"
	case ast.OpDiv:
		return "__div"
	case ast.OpIdiv:
		return "__idiv"
	case ast.OpMod:
		return "__mod"
	case ast.OpPow:
		return "__pow"
	}
	return ""
}

// numArith computes one arithmetic operation on raw doubles
func numArith(op ast.BinOp, a, b float64) float64 {
	switch op {
	case ast.OpAdd:
		return a + b
	case ast.OpSub:
		return a - b
	case ast.OpMul:
		return a * b
	case ast.OpDiv:
		return a / b
	case ast.OpIdiv:
		return math.Floor(a / b)
	case ast.OpMod:
		// floored modulo: the result takes the divisor's sign
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		} else if m == 0 {
			m = 0 // exact multiples give +0
		}
		return m
	case ast.OpPow:
		return math.Pow(a, b)
	}
	return math.NaN()
}

// arith implements the arithmetic operators with numeric coercion and
// metamethod fallback. Strings that parse as numbers take part directly;
// otherwise the handler comes from the first operand that has one.
func (in *Interp) arith(ctx *types.Context, op ast.BinOp, a, b types.Value) types.Result {
	x, okx := types.ToNumber(a)
	y, oky := types.ToNumber(b)
	if okx && oky {
		return types.Ok(types.NewNumber(numArith(op, x, y)))
	}
	event := arithEvent(op)
	if h := in.metamethod(a, event); !types.IsNil(h) {
		return in.call1(ctx, h, a, b)
	}
	if h := in.metamethod(b, event); !types.IsNil(h) {
		return in.call1(ctx, h, a, b)
	}
	// the fault names the operand that failed to convert
	bad := a
	if okx {
		bad = b
	}
	return in.throwf(ctx, "attempt to perform arithmetic on a %s value", types.TypeName(bad))
}

// unaryMinus implements negation: -x, with __unm fallback. The handler
// receives the operand twice, matching the binary handler shape.
func (in *Interp) unaryMinus(ctx *types.Context, v types.Value) types.Result {
	if x, ok := types.ToNumber(v); ok {
		return types.Ok(types.NewNumber(-x))
	}
	if h := in.metamethod(v, "__unm"); !types.IsNil(h) {
		return in.call1(ctx, h, v, v)
	}
	return in.throwf(ctx, "attempt to perform arithmetic on a %s value", types.TypeName(v))
}

// length implements #: byte length for strings, a border for tables.
// Tables never consult __len in this dialect; other values may carry one.
func (in *Interp) length(ctx *types.Context, v types.Value) types.Result {
	switch t := v.(type) {
	case types.StrValue:
		return types.Ok(types.NewNumber(float64(len(t))))
	case *types.Table:
		return types.Ok(types.NewNumber(float64(t.Len())))
	}
	if h := in.metamethod(v, "__len"); !types.IsNil(h) {
		return in.call1(ctx, h, v, v)
	}
	return in.throwf(ctx, "attempt to get length of a %s value", types.TypeName(v))
}

// ============================================================================
// CONCATENATION
// ============================================================================

// concat implements ..: strings and numbers join directly, anything else
// dispatches __concat from either operand.
func (in *Interp) concat(ctx *types.Context, a, b types.Value) types.Result {
	as, oka := types.CoerceToString(a)
	bs, okb := types.CoerceToString(b)
	if oka && okb {
		return types.Ok(types.NewStr(as + bs))
	}
	if h := in.metamethod(a, "__concat"); !types.IsNil(h) {
		return in.call1(ctx, h, a, b)
	}
	if h := in.metamethod(b, "__concat"); !types.IsNil(h) {
		return in.call1(ctx, h, a, b)
	}
	bad := a
	if oka {
		bad = b
	}
	return in.throwf(ctx, "attempt to concatenate a %s value", types.TypeName(bad))
}

// ============================================================================
// EQUALITY
// ============================================================================

// sharedHandler returns the handler for an event only when both operands
// resolve it to the same function.
func (in *Interp) sharedHandler(a, b types.Value, event string) types.Value {
	ha := in.metamethod(a, event)
	if types.IsNil(ha) {
		return types.Nil
	}
	hb := in.metamethod(b, event)
	if types.IsNil(hb) || !ha.Equal(hb) {
		return types.Nil
	}
	return ha
}

// equalValues implements ==: raw equality first, then __eq, but only when
// both operands are tables or both are userdata sharing the handler. The
// handler's result collapses to a boolean by truthiness.
func (in *Interp) equalValues(ctx *types.Context, a, b types.Value) types.Result {
	if a.Equal(b) {
		return types.Ok(types.True)
	}
	at, bt := a.Type(), b.Type()
	if at != bt || (at != types.TypeTable && at != types.TypeUserdata) {
		return types.Ok(types.False)
	}
	h := in.sharedHandler(a, b, "__eq")
	if types.IsNil(h) {
		return types.Ok(types.False)
	}
	res := in.call1(ctx, h, a, b)
	if res.IsError() {
		return res
	}
	return types.Ok(types.NewBool(res.First().Truthy()))
}

// ============================================================================
// RELATIONAL OPERATORS
// ============================================================================

// lessValue implements <: numbers and strings compare directly, anything
// else through a __lt both operands agree on.
func (in *Interp) lessValue(ctx *types.Context, a, b types.Value) types.Result {
	if an, ok := a.(types.NumberValue); ok {
		if bn, ok := b.(types.NumberValue); ok {
			return types.Ok(types.NewBool(float64(an) < float64(bn)))
		}
	}
	if as, ok := a.(types.StrValue); ok {
		if bs, ok := b.(types.StrValue); ok {
			return types.Ok(types.NewBool(string(as) < string(bs)))
		}
	}
	if h := in.sharedHandler(a, b, "__lt"); !types.IsNil(h) {
		res := in.call1(ctx, h, a, b)
		if res.IsError() {
			return res
		}
		return types.Ok(types.NewBool(res.First().Truthy()))
	}
	return in.compareFault(ctx, a, b)
}

// lessEqValue implements <=: direct comparison, then __le, then the
// negated reverse __lt.
func (in *Interp) lessEqValue(ctx *types.Context, a, b types.Value) types.Result {
	if an, ok := a.(types.NumberValue); ok {
		if bn, ok := b.(types.NumberValue); ok {
			return types.Ok(types.NewBool(float64(an) <= float64(bn)))
		}
	}
	if as, ok := a.(types.StrValue); ok {
		if bs, ok := b.(types.StrValue); ok {
			return types.Ok(types.NewBool(string(as) <= string(bs)))
		}
	}
	if h := in.sharedHandler(a, b, "__le"); !types.IsNil(h) {
		res := in.call1(ctx, h, a, b)
		if res.IsError() {
			return res
		}
		return types.Ok(types.NewBool(res.First().Truthy()))
	}
	if h := in.sharedHandler(b, a, "__lt"); !types.IsNil(h) {
		res := in.call1(ctx, h, b, a)
		if res.IsError() {
			return res
		}
		return types.Ok(types.NewBool(!res.First().Truthy()))
	}
	return in.compareFault(ctx, a, b)
}

// compareFault raises the standard relational type error
func (in *Interp) compareFault(ctx *types.Context, a, b types.Value) types.Result {
	if a.Type() == b.Type() {
		return in.throwf(ctx, "attempt to compare two %s values", types.TypeName(a))
	}
	return in.throwf(ctx, "attempt to compare %s with %s", types.TypeName(a), types.TypeName(b))
}

// ============================================================================
// DISPATCH
// ============================================================================

// binop evaluates a non-short-circuit binary operator on finished
// operands. > and >= swap their operands through < and <=.
func (in *Interp) binop(ctx *types.Context, op ast.BinOp, a, b types.Value) types.Result {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIdiv, ast.OpMod, ast.OpPow:
		return in.arith(ctx, op, a, b)
	case ast.OpConcat:
		return in.concat(ctx, a, b)
	case ast.OpEq:
		return in.equalValues(ctx, a, b)
	case ast.OpNe:
		res := in.equalValues(ctx, a, b)
		if res.IsError() {
			return res
		}
		return types.Ok(types.NewBool(!res.First().Truthy()))
	case ast.OpLt:
		return in.lessValue(ctx, a, b)
	case ast.OpGt:
		return in.lessValue(ctx, b, a)
	case ast.OpLe:
		return in.lessEqValue(ctx, a, b)
	case ast.OpGe:
		return in.lessEqValue(ctx, b, a)
	}
	return in.throwf(ctx, "malformed tree: binary operator %v", op)
}

// unop evaluates a unary operator on a finished operand
func (in *Interp) unop(ctx *types.Context, op ast.UnOp, v types.Value) types.Result {
	switch op {
	case ast.OpNot:
		return types.Ok(types.NewBool(!v.Truthy()))
	case ast.OpUnm:
		return in.unaryMinus(ctx, v)
	case ast.OpLen:
		return in.length(ctx, v)
	}
	return in.throwf(ctx, "malformed tree: unary operator %v", op)
}
