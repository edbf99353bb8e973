package eval

import (
	"luax/ast"
	"luax/types"
)

// execBlock runs statements in order until one diverts control
func (in *Interp) execBlock(ctx *types.Context, fr *frame, stmts []ast.Stmt) types.Result {
	for _, stmt := range stmts {
		result := in.execStmt(ctx, fr, stmt)
		// Propagate control flow (return, break, error)
		if !result.IsNormal() {
			return result
		}
	}
	return types.None()
}

// execStmt runs a single statement
func (in *Interp) execStmt(ctx *types.Context, fr *frame, stmt ast.Stmt) types.Result {
	// Step counting
	if !ctx.ConsumeStep() {
		return in.throwf(ctx, "step budget exhausted")
	}
	if ctx.Cancelled() != nil {
		return in.throwf(ctx, "interrupted")
	}

	switch s := stmt.(type) {
	case *ast.DoStmt:
		return in.execBlock(ctx, fr, s.Body)
	case *ast.SetStmt:
		return in.setStmt(ctx, fr, s)
	case *ast.WhileStmt:
		return in.whileStmt(ctx, fr, s)
	case *ast.RepeatStmt:
		return in.repeatStmt(ctx, fr, s)
	case *ast.IfStmt:
		return in.ifStmt(ctx, fr, s)
	case *ast.NumForStmt:
		return in.numForStmt(ctx, fr, s)
	case *ast.GenForStmt:
		return in.genForStmt(ctx, fr, s)
	case *ast.LocalStmt:
		return in.localStmt(ctx, fr, s)
	case *ast.LocalFuncStmt:
		return in.localFuncStmt(ctx, fr, s)
	case *ast.ReturnStmt:
		return in.returnStmt(ctx, fr, s)
	case *ast.BreakStmt:
		return types.Break()
	case *ast.CallStmt:
		res := in.evalExpr(ctx, fr, s.Call)
		if !res.IsNormal() {
			return res
		}
		return types.None()
	case *ast.GotoStmt:
		return in.throwf(ctx, "goto is not supported")
	case *ast.LabelStmt:
		return types.None()
	}
	return in.throwf(ctx, "malformed tree: unknown statement %T", stmt)
}

// setStmt evaluates a multiple assignment: the value list is computed and
// adjusted first, then the targets are stored left to right.
func (in *Interp) setStmt(ctx *types.Context, fr *frame, s *ast.SetStmt) types.Result {
	vals, res := in.evalExprList(ctx, fr, s.Values)
	if !res.IsNormal() {
		return res
	}
	vals = adjust(vals, len(s.Targets))
	for i, target := range s.Targets {
		if res := in.assign(ctx, fr, target, vals[i]); !res.IsNormal() {
			return res
		}
	}
	return types.None()
}

// assign stores one value through an assignment target
func (in *Interp) assign(ctx *types.Context, fr *frame, target ast.LHS, v types.Value) types.Result {
	switch t := target.(type) {
	case *ast.NameExpr:
		b := fr.info.bindings[t]
		switch b.kind {
		case bindLocal:
			fr.cells[b.index].V = v
			return types.None()
		case bindUpval:
			fr.upvals[b.index].V = v
			return types.None()
		}
		return in.setIndexValue(ctx, in.globalsFor(ctx), types.NewStr(t.Name), v)
	case *ast.IndexExpr:
		obj := in.evalSingle(ctx, fr, t.Object)
		if !obj.IsNormal() {
			return obj
		}
		key := in.evalSingle(ctx, fr, t.Key)
		if !key.IsNormal() {
			return key
		}
		return in.setIndexValue(ctx, obj.First(), key.First(), v)
	}
	return in.throwf(ctx, "malformed tree: assignment target %T", target)
}

// whileStmt evaluates a while loop
func (in *Interp) whileStmt(ctx *types.Context, fr *frame, s *ast.WhileStmt) types.Result {
	for {
		cond := in.evalSingle(ctx, fr, s.Cond)
		if !cond.IsNormal() {
			return cond
		}
		if !cond.First().Truthy() {
			return types.None()
		}
		body := in.execBlock(ctx, fr, s.Body)
		switch body.Flow {
		case types.FlowBreak:
			return types.None()
		case types.FlowReturn, types.FlowError:
			return body
		}
		if !ctx.ConsumeStep() {
			return in.throwf(ctx, "step budget exhausted")
		}
		if ctx.Cancelled() != nil {
			return in.throwf(ctx, "interrupted")
		}
	}
}

// repeatStmt evaluates repeat/until. The condition runs in the body's
// scope, so it sees locals from the current pass.
func (in *Interp) repeatStmt(ctx *types.Context, fr *frame, s *ast.RepeatStmt) types.Result {
	for {
		body := in.execBlock(ctx, fr, s.Body)
		switch body.Flow {
		case types.FlowBreak:
			return types.None()
		case types.FlowReturn, types.FlowError:
			return body
		}
		cond := in.evalSingle(ctx, fr, s.Cond)
		if !cond.IsNormal() {
			return cond
		}
		if cond.First().Truthy() {
			return types.None()
		}
		if !ctx.ConsumeStep() {
			return in.throwf(ctx, "step budget exhausted")
		}
		if ctx.Cancelled() != nil {
			return in.throwf(ctx, "interrupted")
		}
	}
}

// ifStmt evaluates an if/elseif/else chain
func (in *Interp) ifStmt(ctx *types.Context, fr *frame, s *ast.IfStmt) types.Result {
	for _, clause := range s.Clauses {
		cond := in.evalSingle(ctx, fr, clause.Cond)
		if !cond.IsNormal() {
			return cond
		}
		if cond.First().Truthy() {
			return in.execBlock(ctx, fr, clause.Body)
		}
	}
	return in.execBlock(ctx, fr, s.Else)
}

// forCond is the numeric for continuation test: positive step runs while
// i <= limit, any other step while limit <= i.
func forCond(i, limit, step float64) bool {
	if step > 0 {
		return i <= limit
	}
	return limit <= i
}

// numForStmt evaluates a numeric for. The three header expressions are
// evaluated once, coerced in order, and the loop counter is an internal
// double: assigning to the visible variable does not steer the loop. Each
// pass installs a fresh cell, so closures capture that pass's value.
func (in *Interp) numForStmt(ctx *types.Context, fr *frame, s *ast.NumForStmt) types.Result {
	startRes := in.evalSingle(ctx, fr, s.Start)
	if !startRes.IsNormal() {
		return startRes
	}
	limitRes := in.evalSingle(ctx, fr, s.Limit)
	if !limitRes.IsNormal() {
		return limitRes
	}
	stepVal := types.Value(types.NewNumber(1))
	if s.Step != nil {
		stepRes := in.evalSingle(ctx, fr, s.Step)
		if !stepRes.IsNormal() {
			return stepRes
		}
		stepVal = stepRes.First()
	}

	init, ok := types.ToNumber(startRes.First())
	if !ok {
		return in.throwf(ctx, "'for' initial value must be a number")
	}
	limit, ok := types.ToNumber(limitRes.First())
	if !ok {
		return in.throwf(ctx, "'for' limit must be a number")
	}
	step, ok := types.ToNumber(stepVal)
	if !ok {
		return in.throwf(ctx, "'for' step must be a number")
	}

	slot := fr.info.declSlots[s][0]
	for i := init; forCond(i, limit, step); i += step {
		if !ctx.ConsumeStep() {
			return in.throwf(ctx, "step budget exhausted")
		}
		if ctx.Cancelled() != nil {
			return in.throwf(ctx, "interrupted")
		}
		fr.cells[slot] = types.NewCell(types.NewNumber(i))
		body := in.execBlock(ctx, fr, s.Body)
		switch body.Flow {
		case types.FlowBreak:
			return types.None()
		case types.FlowReturn, types.FlowError:
			return body
		}
	}
	return types.None()
}

// genForStmt evaluates a generic for over an iterator triple. Each pass
// calls f(state, control); a nil first result ends the loop, otherwise it
// becomes the next control value and the names get fresh cells.
func (in *Interp) genForStmt(ctx *types.Context, fr *frame, s *ast.GenForStmt) types.Result {
	vals, res := in.evalExprList(ctx, fr, s.Exprs)
	if !res.IsNormal() {
		return res
	}
	vals = adjust(vals, 3)
	f, state, control := vals[0], vals[1], vals[2]

	slots := fr.info.declSlots[s]
	for {
		if !ctx.ConsumeStep() {
			return in.throwf(ctx, "step budget exhausted")
		}
		if ctx.Cancelled() != nil {
			return in.throwf(ctx, "interrupted")
		}
		r := in.callValue(ctx, f, []types.Value{state, control})
		if r.IsError() {
			return r
		}
		rv := adjust(r.Vals, len(slots))
		if types.IsNil(rv[0]) {
			return types.None()
		}
		control = rv[0]
		for i, slot := range slots {
			fr.cells[slot] = types.NewCell(rv[i])
		}
		body := in.execBlock(ctx, fr, s.Body)
		switch body.Flow {
		case types.FlowBreak:
			return types.None()
		case types.FlowReturn, types.FlowError:
			return body
		}
	}
}

// localStmt declares locals: values first, then fresh cells
func (in *Interp) localStmt(ctx *types.Context, fr *frame, s *ast.LocalStmt) types.Result {
	vals, res := in.evalExprList(ctx, fr, s.Values)
	if !res.IsNormal() {
		return res
	}
	vals = adjust(vals, len(s.Names))
	for i, slot := range fr.info.declSlots[s] {
		fr.cells[slot] = types.NewCell(vals[i])
	}
	return types.None()
}

// localFuncStmt declares a recursive local function: the cell exists
// before the closure captures, so the body can call itself.
func (in *Interp) localFuncStmt(ctx *types.Context, fr *frame, s *ast.LocalFuncStmt) types.Result {
	slot := fr.info.declSlots[s][0]
	cell := types.NewCell(types.Nil)
	fr.cells[slot] = cell
	cl := in.makeClosure(ctx, fr, s.Fn)
	if !cl.IsNormal() {
		return cl
	}
	cell.V = cl.First()
	return types.None()
}

// returnStmt evaluates a return's value list and unwinds
func (in *Interp) returnStmt(ctx *types.Context, fr *frame, s *ast.ReturnStmt) types.Result {
	vals, res := in.evalExprList(ctx, fr, s.Values)
	if !res.IsNormal() {
		return res
	}
	return types.Return(vals)
}
