package eval

import (
	"luax/types"
)

// metamethod fetches a named handler from a value's metatable
func (in *Interp) metamethod(v types.Value, event string) types.Value {
	mt := in.metatableOf(v)
	if mt == nil {
		return types.Nil
	}
	return mt.GetField(event)
}

// indexValue reads target[key] with __index dispatch. A raw hit or a
// handlerless table ends the walk; a function handler is called with
// (target, key); any other handler becomes the next target.
func (in *Interp) indexValue(ctx *types.Context, target, key types.Value) types.Result {
	for hops := 0; hops < maxMetaChain; hops++ {
		if t, ok := target.(*types.Table); ok {
			if v := t.RawGet(key); !types.IsNil(v) {
				return types.Ok(v)
			}
			h := in.metamethod(target, "__index")
			if types.IsNil(h) {
				return types.Ok(types.Nil)
			}
			if h.Type() == types.TypeFunction {
				return in.call1(ctx, h, target, key)
			}
			target = h
			continue
		}
		h := in.metamethod(target, "__index")
		if types.IsNil(h) {
			return in.throwf(ctx, "attempt to index a %s value", types.TypeName(target))
		}
		if h.Type() == types.TypeFunction {
			return in.call1(ctx, h, target, key)
		}
		target = h
	}
	return in.throwf(ctx, "loop in gettable")
}

// setIndexValue writes target[key] = val with __newindex dispatch. The
// raw write happens when the key is already present or the table has no
// handler; otherwise the handler runs or the walk moves to it.
func (in *Interp) setIndexValue(ctx *types.Context, target, key, val types.Value) types.Result {
	for hops := 0; hops < maxMetaChain; hops++ {
		if t, ok := target.(*types.Table); ok {
			if !types.IsNil(t.RawGet(key)) {
				if err := t.RawSet(key, val); err != nil {
					return in.throwf(ctx, "%s", err)
				}
				return types.None()
			}
			h := in.metamethod(target, "__newindex")
			if types.IsNil(h) {
				if err := t.RawSet(key, val); err != nil {
					return in.throwf(ctx, "%s", err)
				}
				return types.None()
			}
			if h.Type() == types.TypeFunction {
				res := in.callValue(ctx, h, []types.Value{target, key, val})
				if res.IsError() {
					return res
				}
				return types.None()
			}
			target = h
			continue
		}
		h := in.metamethod(target, "__newindex")
		if types.IsNil(h) {
			return in.throwf(ctx, "attempt to index a %s value", types.TypeName(target))
		}
		if h.Type() == types.TypeFunction {
			res := in.callValue(ctx, h, []types.Value{target, key, val})
			if res.IsError() {
				return res
			}
			return types.None()
		}
		target = h
	}
	return in.throwf(ctx, "loop in settable")
}
