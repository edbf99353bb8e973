// Package eval executes decoded chunks: resolve.go classifies every name
// occurrence up front, then a tree walker runs the statements against
// cell-based frames. All faults travel as Result values; the package never
// panics on program behavior.
package eval

import (
	"context"
	"fmt"
	"io"
	"strings"

	"luax/ast"
	"luax/builtins"
	"luax/types"
)

// Options configures an interpreter instance
type Options struct {
	MaxDepth  int       // call depth budget, DefaultMaxDepth when 0
	StepLimit int64     // statements per run, 0 = unlimited
	Output    io.Writer // print destination, os.Stdout when nil

	// Extend runs against the registry before the standard install, so
	// host libraries registered there land in the globals table.
	Extend func(*builtins.Registry)
}

// Interp owns a globals table, the installed builtin registry and the
// resolved-function cache. One interpreter runs one chunk at a time;
// concurrent runs need separate instances.
type Interp struct {
	globals    *types.Table
	reg        *builtins.Registry
	infos      map[*ast.FunctionExpr]*protoInfo
	names      map[*ast.FunctionExpr]string
	stringMeta *types.Table
	opts       Options
}

// New creates an interpreter with the standard library installed
func New(opts Options) *Interp {
	in := &Interp{
		globals: types.NewTable(),
		reg:     builtins.NewRegistry(),
		infos:   make(map[*ast.FunctionExpr]*protoInfo),
		names:   make(map[*ast.FunctionExpr]string),
		opts:    opts,
	}
	in.reg.SetCallHandler(in.callValue)
	in.reg.SetMetatableHandler(in.metatableOf)
	in.reg.SetLessHandler(in.lessValue)
	if opts.Extend != nil {
		opts.Extend(in.reg)
	}
	libs := in.reg.Install(in.globals)
	if strlib, ok := libs["string"]; ok {
		// strings index through the string library: ("x"):upper()
		in.stringMeta = types.NewTable()
		in.stringMeta.SetField("__index", strlib)
	}
	return in
}

// Globals returns the interpreter's globals table
func (in *Interp) Globals() *types.Table { return in.globals }

// Registry exposes the builtin registry for host extension
func (in *Interp) Registry() *builtins.Registry { return in.reg }

// Register installs one native function into the globals table
func (in *Interp) Register(name string, fn types.NativeFunc) {
	in.globals.SetField(name, types.NewNative(name, fn))
}

// RegisterLib installs a native into a named library table, creating the
// table when absent.
func (in *Interp) RegisterLib(lib, name string, fn types.NativeFunc) {
	sub, ok := in.globals.GetField(lib).(*types.Table)
	if !ok {
		sub = types.NewTable()
		in.globals.SetField(lib, sub)
	}
	sub.SetField(name, types.NewNative(lib+"."+name, fn))
}

// NewContext builds a run context carrying the interpreter's budgets
func (in *Interp) NewContext() *types.Context {
	ctx := types.NewContext()
	ctx.Globals = in.globals
	if in.opts.MaxDepth > 0 {
		ctx.MaxDepth = in.opts.MaxDepth
	}
	if in.opts.StepLimit > 0 {
		ctx.StepLimit = in.opts.StepLimit
	}
	if in.opts.Output != nil {
		ctx.Output = in.opts.Output
	}
	return ctx
}

// Compile decodes and resolves a serialized chunk
func Compile(data []byte) (*Program, error) {
	chunk, err := ast.DecodeChunk(data)
	if err != nil {
		return nil, err
	}
	return resolveChunk(chunk)
}

// Check reports whether a serialized chunk decodes and resolves cleanly
func Check(data []byte) error {
	_, err := Compile(data)
	return err
}

// adopt merges a program's resolution tables into the interpreter-lifetime
// caches, so closures created by the run stay callable afterwards.
func (in *Interp) adopt(p *Program) {
	for fn, info := range p.infos {
		in.infos[fn] = info
	}
	for fn, name := range p.names {
		in.names[fn] = name
	}
}

// Run decodes, resolves and executes a chunk, passing args as its ...
func (in *Interp) Run(goCtx context.Context, data []byte, args ...types.Value) ([]types.Value, error) {
	p, err := Compile(data)
	if err != nil {
		return nil, err
	}
	return in.RunProgram(goCtx, p, args...)
}

// RunProgram executes an already-compiled chunk
func (in *Interp) RunProgram(goCtx context.Context, p *Program, args ...types.Value) ([]types.Value, error) {
	in.adopt(p)
	ctx := in.NewContext()
	if goCtx != nil {
		ctx.Ctx = goCtx
	}
	main := &types.Closure{Proto: p.fn, Name: "main chunk"}
	res := in.callValue(ctx, main, args)
	return in.finish(ctx, res)
}

// Call invokes a callable Lua value from Go
func (in *Interp) Call(goCtx context.Context, fn types.Value, args ...types.Value) ([]types.Value, error) {
	ctx := in.NewContext()
	if goCtx != nil {
		ctx.Ctx = goCtx
	}
	res := in.callValue(ctx, fn, args)
	return in.finish(ctx, res)
}

// finish converts a final Result into the host-facing return shape. A
// fault raised by cancellation surfaces as the Go context error, not as a
// script error.
func (in *Interp) finish(ctx *types.Context, res types.Result) ([]types.Value, error) {
	if res.IsError() {
		if err := ctx.Cancelled(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		return nil, &LuaError{Value: res.Err, Trace: res.Trace}
	}
	return res.Vals, nil
}

// LuaError is an uncaught in-language fault surfaced to the host
type LuaError struct {
	Value types.Value
	Trace []string
}

func (e *LuaError) Error() string {
	if s, ok := types.CoerceToString(e.Value); ok {
		return s
	}
	return fmt.Sprintf("(error object is a %s value)", types.TypeName(e.Value))
}

// Traceback renders the stored call stack, one frame per line
func (e *LuaError) Traceback() string {
	if len(e.Trace) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("stack traceback:")
	for _, f := range e.Trace {
		b.WriteString("\n\tin ")
		b.WriteString(f)
	}
	return b.String()
}

// metatableOf reports a value's effective metatable: tables and userdata
// carry their own, strings share the interpreter's string metatable.
func (in *Interp) metatableOf(v types.Value) *types.Table {
	switch t := v.(type) {
	case *types.Table:
		return t.Metatable()
	case *types.Userdata:
		return t.Meta
	case types.StrValue:
		return in.stringMeta
	}
	return nil
}

// globalsFor picks the run's globals table
func (in *Interp) globalsFor(ctx *types.Context) types.Value {
	if ctx.Globals != nil {
		return ctx.Globals
	}
	return in.globals
}

// frame is one activation: the resolved shape, a cell per slot, the
// captured upvalues and any extra arguments.
type frame struct {
	info    *protoInfo
	cells   []*types.Cell
	upvals  []*types.Cell
	varargs []types.Value
}
