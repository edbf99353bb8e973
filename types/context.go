package types

import (
	"context"
	"io"
	"os"
)

// DefaultMaxDepth is the call depth budget when none is configured
const DefaultMaxDepth = 200

// Context holds the execution state for one run:
// - cancellation (checked at loop backedges and calls)
// - call depth and optional step budgets (runaway protection)
// - the output writer builtins print to
// - the globals table and the current coroutine
// It is passed through all evaluator methods and into every native.
type Context struct {
	Ctx       context.Context
	Output    io.Writer
	Globals   *Table
	Coro      *Coroutine // nil on the main body
	MaxDepth  int
	StepLimit int64 // 0 = unlimited

	depth  int
	steps  int64
	frames []string // debug names, innermost last
}

// NewContext creates a run context with default budgets
func NewContext() *Context {
	return &Context{
		Ctx:      context.Background(),
		Output:   os.Stdout,
		MaxDepth: DefaultMaxDepth,
	}
}

// ForCoroutine derives a context for a coroutine body: same budgets and
// output, fresh depth and call stack.
func (ctx *Context) ForCoroutine(co *Coroutine) *Context {
	return &Context{
		Ctx:       ctx.Ctx,
		Output:    ctx.Output,
		Globals:   ctx.Globals,
		Coro:      co,
		MaxDepth:  ctx.MaxDepth,
		StepLimit: ctx.StepLimit,
	}
}

// EnterCall pushes a frame, returning false when the depth budget is
// exhausted
func (ctx *Context) EnterCall(name string) bool {
	if ctx.depth >= ctx.MaxDepth {
		return false
	}
	ctx.depth++
	ctx.frames = append(ctx.frames, name)
	return true
}

// LeaveCall pops the innermost frame
func (ctx *Context) LeaveCall() {
	ctx.depth--
	ctx.frames = ctx.frames[:len(ctx.frames)-1]
}

// Depth returns the current call depth
func (ctx *Context) Depth() int { return ctx.depth }

// ConsumeStep decrements the step budget and returns false when it is
// exhausted. A zero limit never exhausts.
func (ctx *Context) ConsumeStep() bool {
	if ctx.StepLimit == 0 {
		return true
	}
	ctx.steps++
	return ctx.steps <= ctx.StepLimit
}

// Cancelled returns the cancellation cause, if any
func (ctx *Context) Cancelled() error {
	if ctx.Ctx == nil {
		return nil
	}
	return ctx.Ctx.Err()
}

// Traceback returns the call stack debug names, innermost first
func (ctx *Context) Traceback() []string {
	tb := make([]string, 0, len(ctx.frames))
	for i := len(ctx.frames) - 1; i >= 0; i-- {
		tb = append(tb, ctx.frames[i])
	}
	return tb
}
