// Package builtins provides the standard library natives and the registry
// that installs them into a globals table. Natives never import the
// evaluator; calls back into the language (protected calls, sort
// comparators, coroutine bodies, __tostring) go through a call handler the
// evaluator registers on the registry.
package builtins

import (
	"strings"

	"luax/types"
)

// CallFunc is a callback for calling a function value through the full
// call protocol, including __call redirection.
type CallFunc func(ctx *types.Context, fn types.Value, args []types.Value) types.Result

// MetatableFunc is a callback reporting the effective metatable of any
// value, including the shared string metatable owned by the evaluator.
type MetatableFunc func(v types.Value) *types.Table

// LessFunc is a callback ordering two values the way the < operator does,
// including __lt dispatch.
type LessFunc func(ctx *types.Context, a, b types.Value) types.Result

// Registry holds the builtin function set before it is installed into a
// globals table. Dotted names ("string.rep") land in library subtables.
type Registry struct {
	funcs  map[string]types.NativeFunc
	order  []string
	values map[string]*types.Native

	caller CallFunc      // set by the evaluator
	metaOf MetatableFunc // set by the evaluator
	lesser LessFunc      // set by the evaluator
}

// NewRegistry creates a registry preloaded with the standard library
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]types.NativeFunc)}

	// Base functions
	r.Register("type", builtinType)
	r.Register("tonumber", builtinTonumber)
	r.Register("next", builtinNext)
	r.Register("ipairs", builtinIpairs)
	r.Register("select", builtinSelect)
	r.Register("unpack", builtinUnpack)
	r.Register("rawget", builtinRawget)
	r.Register("rawset", builtinRawset)
	r.Register("rawequal", builtinRawequal)
	r.Register("rawlen", builtinRawlen)
	r.Register("setmetatable", builtinSetmetatable)
	r.Register("assert", builtinAssert)
	r.Register("error", builtinError)
	r.Register("collectgarbage", builtinCollectgarbage)

	// Base functions that call back through the registry: tostring
	// metamethods, protected calls and the pairs iterator pass through r.
	r.Register("print", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinPrint(ctx, args, r)
	})
	r.Register("tostring", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinTostring(ctx, args, r)
	})
	r.Register("pairs", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinPairs(ctx, args, r)
	})
	r.Register("getmetatable", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinGetmetatable(ctx, args, r)
	})
	r.Register("pcall", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinPcall(ctx, args, r)
	})
	r.Register("xpcall", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinXpcall(ctx, args, r)
	})

	// String library
	r.Register("string.len", builtinStringLen)
	r.Register("string.sub", builtinStringSub)
	r.Register("string.upper", builtinStringUpper)
	r.Register("string.lower", builtinStringLower)
	r.Register("string.rep", builtinStringRep)
	r.Register("string.reverse", builtinStringReverse)
	r.Register("string.byte", builtinStringByte)
	r.Register("string.char", builtinStringChar)
	r.Register("string.format", builtinStringFormat)

	// Table library
	r.Register("table.insert", builtinTableInsert)
	r.Register("table.remove", builtinTableRemove)
	r.Register("table.concat", builtinTableConcat)
	r.Register("table.sort", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinTableSort(ctx, args, r)
	})

	// Math library
	r.Register("math.floor", builtinMathFloor)
	r.Register("math.ceil", builtinMathCeil)
	r.Register("math.abs", builtinMathAbs)
	r.Register("math.max", builtinMathMax)
	r.Register("math.min", builtinMathMin)
	r.Register("math.sqrt", builtinMathSqrt)
	r.Register("math.fmod", builtinMathFmod)
	r.Register("math.modf", builtinMathModf)
	r.Register("math.pow", builtinMathPow)

	// OS library
	r.Register("os.time", builtinOsTime)
	r.Register("os.clock", builtinOsClock)

	// Coroutine library; resume and wrap drive bodies through the registry
	r.Register("coroutine.create", builtinCoroutineCreate)
	r.Register("coroutine.yield", builtinCoroutineYield)
	r.Register("coroutine.status", builtinCoroutineStatus)
	r.Register("coroutine.running", builtinCoroutineRunning)
	r.Register("coroutine.resume", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinCoroutineResume(ctx, args, r)
	})
	r.Register("coroutine.wrap", func(ctx *types.Context, args []types.Value) types.Result {
		return builtinCoroutineWrap(ctx, args, r)
	})

	return r
}

// Register adds a builtin function under a flat or dotted name
func (r *Registry) Register(name string, fn types.NativeFunc) {
	if _, ok := r.funcs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.funcs[name] = fn
}

// Get retrieves a builtin function by name
// Returns (function, true) if found, (nil, false) if not found
func (r *Registry) Get(name string) (types.NativeFunc, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has checks if a builtin function is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// SetCallHandler sets the callback for calling function values
func (r *Registry) SetCallHandler(caller CallFunc) {
	r.caller = caller
}

// Call invokes a function value through the registered call handler. With
// no handler set only bare natives are callable.
func (r *Registry) Call(ctx *types.Context, fn types.Value, args []types.Value) types.Result {
	if r.caller == nil {
		if n, ok := fn.(*types.Native); ok {
			return n.Fn(ctx, args)
		}
		return fault(ctx, "attempt to call a %s value", types.TypeName(fn))
	}
	return r.caller(ctx, fn, args)
}

// SetMetatableHandler sets the callback for reading a value's metatable
func (r *Registry) SetMetatableHandler(metaOf MetatableFunc) {
	r.metaOf = metaOf
}

// SetLessHandler sets the callback for relational ordering
func (r *Registry) SetLessHandler(lesser LessFunc) {
	r.lesser = lesser
}

// Less orders two values through the registered handler, falling back to
// direct number and string comparison.
func (r *Registry) Less(ctx *types.Context, a, b types.Value) types.Result {
	if r.lesser != nil {
		return r.lesser(ctx, a, b)
	}
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
	if a.Type() == b.Type() {
		return fault(ctx, "attempt to compare two %s values", types.TypeName(a))
	}
	return fault(ctx, "attempt to compare %s with %s", types.TypeName(a), types.TypeName(b))
}

// MetatableOf reads a value's effective metatable through the registered
// handler, falling back to the value's own metatable field.
func (r *Registry) MetatableOf(v types.Value) *types.Table {
	if r.metaOf == nil {
		switch t := v.(type) {
		case *types.Table:
			return t.Metatable()
		case *types.Userdata:
			return t.Meta
		}
		return nil
	}
	return r.metaOf(v)
}

// Install populates a globals table with the registered natives and the
// non-function library fields, returning the library subtables by name.
func (r *Registry) Install(g *types.Table) map[string]*types.Table {
	r.values = make(map[string]*types.Native, len(r.order))
	libs := make(map[string]*types.Table)
	for _, name := range r.order {
		nf := types.NewNative(name, r.funcs[name])
		r.values[name] = nf
		lib, fname, dotted := strings.Cut(name, ".")
		if !dotted {
			g.SetField(name, nf)
			continue
		}
		t := libs[lib]
		if t == nil {
			t = types.NewTable()
			libs[lib] = t
			g.SetField(lib, t)
		}
		t.SetField(fname, nf)
	}
	installConstants(g, libs)
	return libs
}

// installed returns the function value Install created for a name; pairs
// uses it to hand out the real next function.
func (r *Registry) installed(name string) types.Value {
	if nf, ok := r.values[name]; ok {
		return nf
	}
	return types.Nil
}
