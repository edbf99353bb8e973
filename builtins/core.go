package builtins

import (
	"fmt"
	"strings"

	"luax/types"
)

// maxUnpack bounds how many results unpack may produce at once
const maxUnpack = 1 << 20

// installConstants fills in the non-function fields of a standard install
func installConstants(g *types.Table, libs map[string]*types.Table) {
	g.SetField("_G", g)
	g.SetField("_VERSION", types.NewStr("Lua 5.1"))
	if m := libs["math"]; m != nil {
		installMathConstants(m)
	}
}

// builtinPrint writes its arguments to the context output, separated by
// tabs and terminated by a newline. Values render through the global
// tostring, so __tostring and user replacements are honored.
// print(...) ->
func builtinPrint(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	tostring := types.Nil
	if ctx.Globals != nil {
		tostring = ctx.Globals.GetField("tostring")
	}
	parts := make([]string, len(args))
	for i, v := range args {
		if types.IsNil(tostring) {
			parts[i] = v.String()
			continue
		}
		res := r.Call(ctx, tostring, []types.Value{v})
		if res.IsError() {
			return res
		}
		s, ok := types.CoerceToString(res.First())
		if !ok {
			return fault(ctx, "'tostring' must return a string to 'print'")
		}
		parts[i] = s
	}
	fmt.Fprintln(ctx.Output, strings.Join(parts, "\t"))
	return types.None()
}

// builtinType returns a value's type name
// type(v) -> str
func builtinType(ctx *types.Context, args []types.Value) types.Result {
	if len(args) == 0 {
		return anyFault(ctx, 1, "type")
	}
	return types.Ok(types.NewStr(types.TypeName(args[0])))
}

// builtinTostring renders a value for display. A __tostring metamethod
// takes over completely and its result is returned as-is.
// tostring(v) -> str
func builtinTostring(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	if len(args) == 0 {
		return anyFault(ctx, 1, "tostring")
	}
	v := args[0]
	if mt := r.MetatableOf(v); mt != nil {
		if h := mt.GetField("__tostring"); !types.IsNil(h) {
			res := r.Call(ctx, h, []types.Value{v})
			if res.IsError() {
				return res
			}
			return types.Ok(res.First())
		}
	}
	return types.Ok(types.NewStr(v.String()))
}

// builtinTonumber converts a value to a number, or nil when it does not
// convert. With an explicit base the argument is read as an integer
// numeral in that base.
// tonumber(v [, base]) -> number|nil
func builtinTonumber(ctx *types.Context, args []types.Value) types.Result {
	if len(args) == 0 {
		return anyFault(ctx, 1, "tonumber")
	}
	base, ok := optInt(args, 2, 10)
	if !ok {
		return argFault(ctx, args, 2, "tonumber", "number")
	}
	if base == 10 {
		if f, ok := types.ToNumber(args[0]); ok {
			return types.Ok(types.NewNumber(f))
		}
		return types.Ok(types.Nil)
	}
	if base < 2 || base > 36 {
		return fault(ctx, "bad argument #2 to 'tonumber' (base out of range)")
	}
	s, ok := argStr(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "tonumber", "string")
	}
	if f, ok := types.ParseNumberBase(s, base); ok {
		return types.Ok(types.NewNumber(f))
	}
	return types.Ok(types.Nil)
}

// builtinNext steps a table traversal: next(t) starts it, next(t, k)
// continues from k, and nil key/value marks the end.
// next(t [, k]) -> k, v | nil
func builtinNext(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "next", "table")
	}
	k, v, err := t.Next(arg(args, 1))
	if err != nil {
		return fault(ctx, "invalid key to 'next'")
	}
	if types.IsNil(k) {
		return types.Ok(types.Nil)
	}
	return types.OkMulti([]types.Value{k, v})
}

// ipairsIter is the hidden iterator ipairs hands out. Reads are raw and
// the walk stops at the first nil.
var ipairsIter = types.NewNative("ipairs iterator", func(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "ipairs", "table")
	}
	i, ok := argInt(args, 2)
	if !ok {
		return argFault(ctx, args, 2, "ipairs", "number")
	}
	i++
	v := t.RawGetInt(i)
	if types.IsNil(v) {
		return types.Ok(types.Nil)
	}
	return types.OkMulti([]types.Value{types.NewNumber(float64(i)), v})
})

// builtinIpairs returns an iterator triple over the integer prefix 1..n
// ipairs(t) -> iter, t, 0
func builtinIpairs(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "ipairs", "table")
	}
	return types.OkMulti([]types.Value{ipairsIter, t, types.NewNumber(0)})
}

// builtinPairs returns the raw traversal triple: the real next function,
// the table, and nil.
// pairs(t) -> next, t, nil
func builtinPairs(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "pairs", "table")
	}
	return types.OkMulti([]types.Value{r.installed("next"), t, types.Nil})
}

// builtinSelect returns the arguments from position n on, or with "#" the
// argument count. Negative n counts from the end.
// select(n, ...) -> ...
func builtinSelect(ctx *types.Context, args []types.Value) types.Result {
	if len(args) == 0 {
		return argFault(ctx, args, 1, "select", "number")
	}
	n := len(args)
	if s, ok := args[0].(types.StrValue); ok && len(s) > 0 && s[0] == '#' {
		return types.Ok(types.NewNumber(float64(n - 1)))
	}
	i, ok := argInt(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "select", "number")
	}
	if i < 0 {
		i = n + i
	} else if i > n {
		i = n
	}
	if i < 1 {
		return fault(ctx, "bad argument #1 to 'select' (index out of range)")
	}
	return types.OkMulti(args[i:])
}

// builtinUnpack spreads a slice of a table into results, raw reads over
// i..j with j defaulting to the border.
// unpack(t [, i [, j]]) -> ...
func builtinUnpack(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "unpack", "table")
	}
	i, ok := optInt(args, 2, 1)
	if !ok {
		return argFault(ctx, args, 2, "unpack", "number")
	}
	j, ok := optInt(args, 3, t.Len())
	if !ok {
		return argFault(ctx, args, 3, "unpack", "number")
	}
	if i > j {
		return types.None()
	}
	n := j - i + 1
	if n <= 0 || n > maxUnpack {
		return fault(ctx, "too many results to unpack")
	}
	vals := make([]types.Value, 0, n)
	for k := i; k <= j; k++ {
		vals = append(vals, t.RawGetInt(k))
	}
	return types.OkMulti(vals)
}

// builtinRawget reads a table key without metamethods
// rawget(t, k) -> v
func builtinRawget(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "rawget", "table")
	}
	if len(args) < 2 {
		return anyFault(ctx, 2, "rawget")
	}
	return types.Ok(t.RawGet(args[1]))
}

// builtinRawset writes a table key without metamethods and returns the
// table. Nil and NaN keys fault as in a plain store.
// rawset(t, k, v) -> t
func builtinRawset(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "rawset", "table")
	}
	if len(args) < 3 {
		return anyFault(ctx, 3, "rawset")
	}
	if err := t.RawSet(args[1], args[2]); err != nil {
		return fault(ctx, "%s", err)
	}
	return types.Ok(t)
}

// builtinRawequal compares two values without __eq
// rawequal(a, b) -> bool
func builtinRawequal(ctx *types.Context, args []types.Value) types.Result {
	if len(args) < 2 {
		return anyFault(ctx, len(args)+1, "rawequal")
	}
	return types.Ok(types.NewBool(args[0].Equal(args[1])))
}

// builtinRawlen returns a table border or string length without
// metamethods
// rawlen(v) -> number
func builtinRawlen(ctx *types.Context, args []types.Value) types.Result {
	switch v := arg(args, 0).(type) {
	case *types.Table:
		return types.Ok(types.NewNumber(float64(v.Len())))
	case types.StrValue:
		return types.Ok(types.NewNumber(float64(len(v))))
	}
	return fault(ctx, "table or string expected")
}

// builtinSetmetatable attaches or clears a table's metatable. A metatable
// carrying __metatable is protected and cannot be replaced.
// setmetatable(t, mt|nil) -> t
func builtinSetmetatable(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "setmetatable", "table")
	}
	mv := arg(args, 1)
	mt, isTable := mv.(*types.Table)
	if !isTable && !types.IsNil(mv) {
		return argFault(ctx, args, 2, "setmetatable", "nil or table")
	}
	if cur := t.Metatable(); cur != nil && !types.IsNil(cur.GetField("__metatable")) {
		return fault(ctx, "cannot change a protected metatable")
	}
	t.SetMetatable(mt)
	return types.Ok(t)
}

// builtinGetmetatable reads a value's metatable, with the __metatable
// field substituting when present.
// getmetatable(v) -> mt|nil
func builtinGetmetatable(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	if len(args) == 0 {
		return anyFault(ctx, 1, "getmetatable")
	}
	mt := r.MetatableOf(args[0])
	if mt == nil {
		return types.Ok(types.Nil)
	}
	if prot := mt.GetField("__metatable"); !types.IsNil(prot) {
		return types.Ok(prot)
	}
	return types.Ok(mt)
}

// builtinAssert returns its arguments when the first is truthy, and
// otherwise raises the second argument, or "assertion failed!" without
// one. The message is raised unaltered, whatever its type.
// assert(v, ...) -> ...
func builtinAssert(ctx *types.Context, args []types.Value) types.Result {
	if len(args) == 0 {
		return anyFault(ctx, 1, "assert")
	}
	if args[0].Truthy() {
		return types.OkMulti(args)
	}
	if len(args) >= 2 {
		return throw(ctx, args[1])
	}
	return fault(ctx, "assertion failed!")
}

// builtinError raises its argument as the error value, unaltered. The
// level argument is accepted for source compatibility; the engine carries
// no source positions, so no location is prepended.
// error(v [, level])
func builtinError(ctx *types.Context, args []types.Value) types.Result {
	return throw(ctx, arg(args, 0))
}

// builtinPcall calls a function in protected mode
// pcall(f, ...) -> true, ... | false, errval
func builtinPcall(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	if len(args) == 0 {
		return anyFault(ctx, 1, "pcall")
	}
	res := r.Call(ctx, args[0], args[1:])
	if res.IsError() {
		return types.OkMulti([]types.Value{types.False, res.Err})
	}
	return types.OkMulti(append([]types.Value{types.True}, res.Vals...))
}

// builtinXpcall calls a function in protected mode with a message
// handler: a fault calls handler(errval) and its first result becomes the
// second return. A fault inside the handler itself ends the protection
// with that new fault as the second return.
// xpcall(f, handler) -> true, ... | false, handled
func builtinXpcall(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	if len(args) < 2 {
		return anyFault(ctx, 2, "xpcall")
	}
	res := r.Call(ctx, args[0], nil)
	if !res.IsError() {
		return types.OkMulti(append([]types.Value{types.True}, res.Vals...))
	}
	handled := r.Call(ctx, args[1], []types.Value{res.Err})
	if handled.IsError() {
		return types.OkMulti([]types.Value{types.False, handled.Err})
	}
	return types.OkMulti([]types.Value{types.False, handled.First()})
}

// builtinCollectgarbage is a stub; the substrate owns memory. Every option
// reports 0.
// collectgarbage([opt [, arg]]) -> 0
func builtinCollectgarbage(ctx *types.Context, args []types.Value) types.Result {
	return types.Ok(types.NewNumber(0))
}
