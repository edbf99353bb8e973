package builtins

import (
	"luax/types"
)

// fault raises an error message with the current call stack attached
func fault(ctx *types.Context, format string, a ...any) types.Result {
	res := types.Throwf(format, a...)
	res.Trace = ctx.Traceback()
	return res
}

// throw raises an arbitrary error value with the call stack attached
func throw(ctx *types.Context, v types.Value) types.Result {
	res := types.Throw(v)
	res.Trace = ctx.Traceback()
	return res
}

// arg returns the nth argument (0-based), nil when absent
func arg(args []types.Value, n int) types.Value {
	if n < len(args) {
		return args[n]
	}
	return types.Nil
}

// argFault raises the standard bad-argument fault. n is 1-based, matching
// the message convention.
func argFault(ctx *types.Context, args []types.Value, n int, fname, want string) types.Result {
	got := "no value"
	if n-1 < len(args) {
		got = types.TypeName(args[n-1])
	}
	return fault(ctx, "bad argument #%d to '%s' (%s expected, got %s)", n, fname, want, got)
}

// anyFault raises the bad-argument fault for a missing required argument
func anyFault(ctx *types.Context, n int, fname string) types.Result {
	return fault(ctx, "bad argument #%d to '%s' (value expected)", n, fname)
}

// argNumber fetches argument n (1-based) as a number, with the usual
// numeric-string coercion.
func argNumber(args []types.Value, n int) (float64, bool) {
	return types.ToNumber(arg(args, n-1))
}

// argInt fetches argument n as an integer, truncating toward zero
func argInt(args []types.Value, n int) (int, bool) {
	f, ok := argNumber(args, n)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// optInt fetches an optional integer argument, def when absent or nil
func optInt(args []types.Value, n, def int) (int, bool) {
	if types.IsNil(arg(args, n-1)) {
		return def, true
	}
	return argInt(args, n)
}

// argStr fetches argument n as a string, coercing numbers
func argStr(args []types.Value, n int) (string, bool) {
	return types.CoerceToString(arg(args, n-1))
}

// optStr fetches an optional string argument, def when absent or nil
func optStr(args []types.Value, n int, def string) (string, bool) {
	if types.IsNil(arg(args, n-1)) {
		return def, true
	}
	return argStr(args, n)
}

// argTable fetches argument n as a table
func argTable(args []types.Value, n int) (*types.Table, bool) {
	t, ok := arg(args, n-1).(*types.Table)
	return t, ok
}

// posRelat converts a possibly negative string position to an absolute
// one, counting -1 as the last byte.
func posRelat(pos, l int) int {
	if pos >= 0 {
		return pos
	}
	if -pos > l {
		return 0
	}
	return l + pos + 1
}
