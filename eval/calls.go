package eval

import (
	"luax/trace"
	"luax/types"
)

// maxMetaChain bounds __call, __index and __newindex redirection
const maxMetaChain = 100

// throwf raises a fault with the current call stack attached
func (in *Interp) throwf(ctx *types.Context, format string, a ...any) types.Result {
	res := types.Throwf(format, a...)
	res.Trace = ctx.Traceback()
	return res
}

// callValue calls any callable value: closures and natives directly,
// everything else through a bounded __call chain with the original value
// prepended to the arguments.
func (in *Interp) callValue(ctx *types.Context, fn types.Value, args []types.Value) types.Result {
	for hops := 0; hops < maxMetaChain; hops++ {
		switch f := fn.(type) {
		case *types.Closure:
			return in.callClosure(ctx, f, args)
		case *types.Native:
			return in.callNative(ctx, f, args)
		}
		h := in.metamethod(fn, "__call")
		if types.IsNil(h) {
			return in.throwf(ctx, "attempt to call a %s value", types.TypeName(fn))
		}
		args = append([]types.Value{fn}, args...)
		fn = h
	}
	return in.throwf(ctx, "stack overflow")
}

// callClosure runs a function body in a fresh frame. Missing arguments
// read as nil, extra ones feed ... on vararg functions and drop otherwise.
func (in *Interp) callClosure(ctx *types.Context, cl *types.Closure, args []types.Value) types.Result {
	info := in.infos[cl.Proto]
	if info == nil {
		return in.throwf(ctx, "attempt to call a function from a foreign interpreter")
	}
	name := cl.Name
	if name == "" {
		name = "?"
	}
	if !ctx.EnterCall(name) {
		return in.throwf(ctx, "stack overflow")
	}
	defer ctx.LeaveCall()

	if trace.IsEnabled() {
		trace.Call(ctx.Depth(), name, args)
	}

	fr := &frame{
		info:   info,
		cells:  make([]*types.Cell, info.nSlots),
		upvals: cl.Upvals,
	}
	np := len(info.params)
	for i := 0; i < np; i++ {
		v := types.Nil
		if i < len(args) {
			v = args[i]
		}
		fr.cells[i] = types.NewCell(v)
	}
	if info.vararg && len(args) > np {
		fr.varargs = args[np:]
	}

	res := in.execBlock(ctx, fr, cl.Proto.Body)
	switch res.Flow {
	case types.FlowReturn:
		out := types.OkMulti(res.Vals)
		if trace.IsEnabled() {
			trace.Return(ctx.Depth(), name, out.Vals)
		}
		return out
	case types.FlowError:
		if trace.IsEnabled() {
			trace.Fault(ctx.Depth(), name, res.Err)
		}
		return res
	case types.FlowBreak:
		// the resolver rejects break outside a loop
		return in.throwf(ctx, "break outside a loop")
	}
	// fell off the end: no values
	if trace.IsEnabled() {
		trace.Return(ctx.Depth(), name, nil)
	}
	return types.None()
}

// callNative invokes a host function, normalizing its result to plain
// values and stamping a traceback onto faults that lack one.
func (in *Interp) callNative(ctx *types.Context, n *types.Native, args []types.Value) types.Result {
	name := n.Name
	if name == "" {
		name = "?"
	}
	if !ctx.EnterCall(name) {
		return in.throwf(ctx, "stack overflow")
	}
	defer ctx.LeaveCall()

	if trace.IsEnabled() {
		trace.Call(ctx.Depth(), name, args)
	}

	res := n.Fn(ctx, args)
	switch res.Flow {
	case types.FlowError:
		if res.Trace == nil {
			res.Trace = ctx.Traceback()
		}
		if trace.IsEnabled() {
			trace.Fault(ctx.Depth(), name, res.Err)
		}
		return res
	case types.FlowReturn:
		res = types.OkMulti(res.Vals)
	case types.FlowBreak:
		return in.throwf(ctx, "'%s' returned an invalid control result", name)
	}
	if trace.IsEnabled() {
		trace.Return(ctx.Depth(), name, res.Vals)
	}
	return res
}

// call1 calls a handler and adjusts its result to a single value
func (in *Interp) call1(ctx *types.Context, fn types.Value, args ...types.Value) types.Result {
	res := in.callValue(ctx, fn, args)
	if res.IsError() {
		return res
	}
	return types.Ok(res.First())
}
