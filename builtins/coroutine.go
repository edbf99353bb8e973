package builtins

import (
	"luax/types"
)

// builtinCoroutineCreate wraps a function value in a new suspended
// coroutine
// coroutine.create(f) -> thread
func builtinCoroutineCreate(ctx *types.Context, args []types.Value) types.Result {
	f := arg(args, 0)
	if f.Type() != types.TypeFunction {
		return argFault(ctx, args, 1, "create", "function")
	}
	return types.Ok(types.NewCoroutine(f))
}

// resumeCo drives one resume, marking the resumer normal while the child
// runs. The body executes on the coroutine's goroutine under a derived
// context, so yields park that goroutine and never block the driver.
func resumeCo(ctx *types.Context, r *Registry, co *types.Coroutine, args []types.Value) ([]types.Value, types.Value, bool) {
	parent := ctx.Coro
	if parent != nil {
		parent.SetStatus(types.CoNormal)
	}
	vals, errval, ok := co.Resume(args, func(a []types.Value) types.Result {
		return r.Call(ctx.ForCoroutine(co), co.Fn, a)
	})
	if parent != nil {
		parent.SetStatus(types.CoRunning)
	}
	return vals, errval, ok
}

// builtinCoroutineResume transfers control into a coroutine until its
// next yield, return or fault. Faults surface as false plus the error
// value, never as a fault in the resumer.
// coroutine.resume(co, ...) -> true, ... | false, errval
func builtinCoroutineResume(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	co, ok := arg(args, 0).(*types.Coroutine)
	if !ok {
		return argFault(ctx, args, 1, "resume", "coroutine")
	}
	vals, errval, ok := resumeCo(ctx, r, co, args[1:])
	if !ok {
		return types.OkMulti([]types.Value{types.False, errval})
	}
	return types.OkMulti(append([]types.Value{types.True}, vals...))
}

// builtinCoroutineYield suspends the running coroutine, handing values to
// the resumer; the next resume's extra arguments become its results.
// coroutine.yield(...) -> ...
func builtinCoroutineYield(ctx *types.Context, args []types.Value) types.Result {
	co := ctx.Coro
	if co == nil {
		return fault(ctx, "attempt to yield from outside a coroutine")
	}
	return types.OkMulti(co.YieldFrom(args))
}

// builtinCoroutineStatus reports suspended, running, normal or dead
// coroutine.status(co) -> str
func builtinCoroutineStatus(ctx *types.Context, args []types.Value) types.Result {
	co, ok := arg(args, 0).(*types.Coroutine)
	if !ok {
		return argFault(ctx, args, 1, "status", "coroutine")
	}
	return types.Ok(types.NewStr(co.Status().String()))
}

// builtinCoroutineRunning returns the running coroutine, nil on the main
// body
// coroutine.running() -> thread|nil
func builtinCoroutineRunning(ctx *types.Context, args []types.Value) types.Result {
	if ctx.Coro == nil {
		return types.Ok(types.Nil)
	}
	return types.Ok(ctx.Coro)
}

// builtinCoroutineWrap returns a function resuming one fresh coroutine
// over f: yields become plain returns and faults re-raise in the caller.
// coroutine.wrap(f) -> function
func builtinCoroutineWrap(ctx *types.Context, args []types.Value, r *Registry) types.Result {
	f := arg(args, 0)
	if f.Type() != types.TypeFunction {
		return argFault(ctx, args, 1, "wrap", "function")
	}
	co := types.NewCoroutine(f)
	wrapped := types.NewNative("wrapped coroutine", func(wctx *types.Context, wargs []types.Value) types.Result {
		vals, errval, ok := resumeCo(wctx, r, co, wargs)
		if !ok {
			return throw(wctx, errval)
		}
		return types.OkMulti(vals)
	})
	return types.Ok(wrapped)
}
