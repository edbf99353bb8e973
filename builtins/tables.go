package builtins

import (
	"sort"
	"strings"

	"luax/types"
)

// builtinTableInsert appends v at the border, or inserts at pos shifting
// the tail up.
// table.insert(t, [pos,] v)
func builtinTableInsert(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "insert", "table")
	}
	n := t.Len()
	switch len(args) {
	case 2:
		t.RawSetInt(n+1, args[1])
	case 3:
		pos, ok := argInt(args, 2)
		if !ok {
			return argFault(ctx, args, 2, "insert", "number")
		}
		e := n + 1
		if pos > e {
			e = pos
		}
		for i := e; i > pos; i-- {
			t.RawSetInt(i, t.RawGetInt(i-1))
		}
		t.RawSetInt(pos, args[2])
	default:
		return fault(ctx, "wrong number of arguments to 'insert'")
	}
	return types.None()
}

// builtinTableRemove removes and returns the element at pos, default the
// border, shifting the tail down. An out-of-range pos removes nothing.
// table.remove(t [, pos]) -> v
func builtinTableRemove(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "remove", "table")
	}
	n := t.Len()
	pos, ok := optInt(args, 2, n)
	if !ok {
		return argFault(ctx, args, 2, "remove", "number")
	}
	if pos < 1 || pos > n {
		return types.None()
	}
	v := t.RawGetInt(pos)
	for ; pos < n; pos++ {
		t.RawSetInt(pos, t.RawGetInt(pos+1))
	}
	t.RawSetInt(n, types.Nil)
	return types.Ok(v)
}

// builtinTableConcat joins the elements i..j, which must be strings or
// numbers, with an optional separator.
// table.concat(t [, sep [, i [, j]]]) -> str
func builtinTableConcat(ctx *types.Context, args []types.Value) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "concat", "table")
	}
	sep, ok := optStr(args, 2, "")
	if !ok {
		return argFault(ctx, args, 2, "concat", "string")
	}
	i, ok := optInt(args, 3, 1)
	if !ok {
		return argFault(ctx, args, 3, "concat", "number")
	}
	j, ok := optInt(args, 4, t.Len())
	if !ok {
		return argFault(ctx, args, 4, "concat", "number")
	}
	var b strings.Builder
	for k := i; k <= j; k++ {
		s, ok := types.CoerceToString(t.RawGetInt(k))
		if !ok {
			return fault(ctx, "invalid value (at index %d) in table for 'concat'", k)
		}
		b.WriteString(s)
		if k < j {
			b.WriteString(sep)
		}
	}
	return types.Ok(types.NewStr(b.String()))
}

// builtinTableSort sorts 1..border in place. A comparator is called
// through the registry; without one, ordering follows the < operator with
// its full dispatch. A fault from the comparator aborts the sort with the
// table unchanged.
// table.sort(t [, comp])
func builtinTableSort(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	t, ok := argTable(args, 1)
	if !ok {
		return argFault(ctx, args, 1, "sort", "table")
	}
	var comp types.Value
	if cv := arg(args, 1); !types.IsNil(cv) {
		comp = cv
	}
	n := t.Len()
	elems := make([]types.Value, n)
	for i := 1; i <= n; i++ {
		elems[i-1] = t.RawGetInt(i)
	}
	var failed types.Result
	less := func(a, b types.Value) bool {
		if failed.IsError() {
			return false
		}
		var res types.Result
		if comp != nil {
			res = r.Call(ctx, comp, []types.Value{a, b})
		} else {
			res = r.Less(ctx, a, b)
		}
		if res.IsError() {
			failed = res
			return false
		}
		return res.First().Truthy()
	}
	sort.SliceStable(elems, func(i, j int) bool { return less(elems[i], elems[j]) })
	if failed.IsError() {
		return failed
	}
	for i := 1; i <= n; i++ {
		t.RawSetInt(i, elems[i-1])
	}
	return types.None()
}
