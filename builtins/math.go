package builtins

import (
	"math"

	"luax/types"
)

// installMathConstants fills in the library's non-function fields
func installMathConstants(m *types.Table) {
	m.SetField("huge", types.NewNumber(math.Inf(1)))
	m.SetField("pi", types.NewNumber(math.Pi))
}

// mathUnary adapts a one-argument float function
func mathUnary(name string, f func(float64) float64) types.NativeFunc {
	return func(ctx *types.Context, args []types.Value) types.Result {
		x, ok := argNumber(args, 1)
		if !ok {
			return argFault(ctx, args, 1, name, "number")
		}
		return types.Ok(types.NewNumber(f(x)))
	}
}

var (
	builtinMathFloor = mathUnary("floor", math.Floor)
	builtinMathCeil  = mathUnary("ceil", math.Ceil)
	builtinMathAbs   = mathUnary("abs", math.Abs)
	builtinMathSqrt  = mathUnary("sqrt", math.Sqrt)
)

// builtinMathMax returns the largest argument
// math.max(x, ...) -> number
func builtinMathMax(ctx *types.Context, args []types.Value) types.Result {
	best, ok := argNumber(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "max", "number")
	}
	for i := 2; i <= len(args); i++ {
		x, ok := argNumber(args, i)
		if !ok {
			return argFault(ctx, args, i, "max", "number")
		}
		if x > best {
			best = x
		}
	}
	return types.Ok(types.NewNumber(best))
}

// builtinMathMin returns the smallest argument
// math.min(x, ...) -> number
func builtinMathMin(ctx *types.Context, args []types.Value) types.Result {
	best, ok := argNumber(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "min", "number")
	}
	for i := 2; i <= len(args); i++ {
		x, ok := argNumber(args, i)
		if !ok {
			return argFault(ctx, args, i, "min", "number")
		}
		if x < best {
			best = x
		}
	}
	return types.Ok(types.NewNumber(best))
}

// builtinMathFmod is the C fmod: the remainder keeps the sign of x,
// unlike the % operator.
// math.fmod(x, y) -> number
func builtinMathFmod(ctx *types.Context, args []types.Value) types.Result {
	x, ok := argNumber(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "fmod", "number")
	}
	y, ok := argNumber(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "fmod", "number")
	}
	return types.Ok(types.NewNumber(math.Mod(x, y)))
}

// builtinMathModf splits into integral and fractional parts
// math.modf(x) -> number, number
func builtinMathModf(ctx *types.Context, args []types.Value) types.Result {
	x, ok := argNumber(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "modf", "number")
	}
	ipart, fpart := math.Modf(x)
	return types.OkMulti([]types.Value{types.NewNumber(ipart), types.NewNumber(fpart)})
}

// builtinMathPow raises x to the power y
// math.pow(x, y) -> number
func builtinMathPow(ctx *types.Context, args []types.Value) types.Result {
	x, ok := argNumber(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "pow", "number")
	}
	y, ok := argNumber(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "pow", "number")
	}
	return types.Ok(types.NewNumber(math.Pow(x, y)))
}
