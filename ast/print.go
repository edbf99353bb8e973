package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator precedence levels (higher = tighter binding)
const (
	precLowest = iota
	precOr
	precAnd
	precComparison // < > <= >= ~= ==
	precConcat     // .. (right assoc)
	precAdditive   // + -
	precMultiply   // * / // %
	precUnary      // not # -
	precPower      // ^ (right assoc)
	precPostfix    // call, index
)

var binOpSyms = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpIdiv: "//",
	OpMod: "%", OpPow: "^", OpConcat: "..", OpEq: "==", OpNe: "~=",
	OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=", OpAnd: "and", OpOr: "or",
}

var binOpPrec = [...]int{
	OpAdd: precAdditive, OpSub: precAdditive,
	OpMul: precMultiply, OpDiv: precMultiply, OpIdiv: precMultiply, OpMod: precMultiply,
	OpPow: precPower, OpConcat: precConcat,
	OpEq: precComparison, OpNe: precComparison,
	OpLt: precComparison, OpGt: precComparison, OpLe: precComparison, OpGe: precComparison,
	OpAnd: precAnd, OpOr: precOr,
}

// FormatChunk renders statements as Lua-like source, one statement per
// top-level line. The output is for diagnostics, not re-parsing.
func FormatChunk(stmts []Stmt) string {
	var sb strings.Builder
	for _, s := range stmts {
		sb.WriteString(formatStmt(s, 0))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatExpr renders a single expression.
func FormatExpr(e Expr) string {
	return formatExpr(e, precLowest)
}

func formatBody(body []Stmt, indent int) string {
	var sb strings.Builder
	for _, s := range body {
		sb.WriteString(formatStmt(s, indent))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatStmt(stmt Stmt, indent int) string {
	ind := strings.Repeat("  ", indent)

	switch s := stmt.(type) {
	case *DoStmt:
		return ind + "do\n" + formatBody(s.Body, indent+1) + ind + "end"

	case *SetStmt:
		targets := make([]string, len(s.Targets))
		for i, t := range s.Targets {
			targets[i] = formatExpr(t, precLowest)
		}
		return ind + strings.Join(targets, ", ") + " = " + formatExprList(s.Values)

	case *WhileStmt:
		return ind + "while " + formatExpr(s.Cond, precLowest) + " do\n" +
			formatBody(s.Body, indent+1) + ind + "end"

	case *RepeatStmt:
		return ind + "repeat\n" + formatBody(s.Body, indent+1) +
			ind + "until " + formatExpr(s.Cond, precLowest)

	case *IfStmt:
		var sb strings.Builder
		for i, c := range s.Clauses {
			kw := "if"
			if i > 0 {
				kw = "elseif"
			}
			sb.WriteString(ind + kw + " " + formatExpr(c.Cond, precLowest) + " then\n")
			sb.WriteString(formatBody(c.Body, indent+1))
		}
		if len(s.Else) > 0 {
			sb.WriteString(ind + "else\n")
			sb.WriteString(formatBody(s.Else, indent+1))
		}
		sb.WriteString(ind + "end")
		return sb.String()

	case *NumForStmt:
		head := ind + "for " + s.Name + " = " + formatExpr(s.Start, precLowest) +
			", " + formatExpr(s.Limit, precLowest)
		if s.Step != nil {
			head += ", " + formatExpr(s.Step, precLowest)
		}
		return head + " do\n" + formatBody(s.Body, indent+1) + ind + "end"

	case *GenForStmt:
		return ind + "for " + strings.Join(s.Names, ", ") + " in " +
			formatExprList(s.Exprs) + " do\n" + formatBody(s.Body, indent+1) + ind + "end"

	case *LocalStmt:
		line := ind + "local " + strings.Join(s.Names, ", ")
		if len(s.Values) > 0 {
			line += " = " + formatExprList(s.Values)
		}
		return line

	case *LocalFuncStmt:
		return ind + "local function " + s.Name + formatFuncTail(s.Fn, indent)

	case *ReturnStmt:
		if len(s.Values) == 0 {
			return ind + "return"
		}
		return ind + "return " + formatExprList(s.Values)

	case *BreakStmt:
		return ind + "break"

	case *CallStmt:
		return ind + formatExpr(s.Call, precLowest)

	case *GotoStmt:
		return ind + "goto " + s.Label

	case *LabelStmt:
		return ind + "::" + s.Name + "::"
	}
	return ind + fmt.Sprintf("--[[unknown statement %T]]", stmt)
}

func formatExprList(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = formatExpr(e, precLowest)
	}
	return strings.Join(parts, ", ")
}

// formatFuncTail renders "(params) body end" after a name or "function".
func formatFuncTail(fn *FunctionExpr, indent int) string {
	params := append([]string{}, fn.Params...)
	if fn.Vararg {
		params = append(params, "...")
	}
	ind := strings.Repeat("  ", indent)
	return "(" + strings.Join(params, ", ") + ")\n" +
		formatBody(fn.Body, indent+1) + ind + "end"
}

func formatExpr(expr Expr, outer int) string {
	switch e := expr.(type) {
	case *NilExpr:
		return "nil"
	case *BoolExpr:
		return strconv.FormatBool(e.Value)
	case *NumberExpr:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case *StringExpr:
		return strconv.Quote(e.Value)
	case *VarargExpr:
		return "..."
	case *NameExpr:
		return e.Name

	case *IndexExpr:
		obj := formatExpr(e.Object, precPostfix)
		if key, ok := e.Key.(*StringExpr); ok && isName(key.Value) {
			return obj + "." + key.Value
		}
		return obj + "[" + formatExpr(e.Key, precLowest) + "]"

	case *CallExpr:
		return formatExpr(e.Fn, precPostfix) + "(" + formatExprList(e.Args) + ")"

	case *InvokeExpr:
		return formatExpr(e.Object, precPostfix) + ":" + e.Method +
			"(" + formatExprList(e.Args) + ")"

	case *FunctionExpr:
		return "function" + formatFuncTail(e, 0)

	case *TableExpr:
		parts := make([]string, len(e.Items))
		for i, item := range e.Items {
			parts[i] = formatExpr(item, precLowest)
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case *PairExpr:
		if key, ok := e.Key.(*StringExpr); ok && isName(key.Value) {
			return key.Value + " = " + formatExpr(e.Value, precLowest)
		}
		return "[" + formatExpr(e.Key, precLowest) + "] = " + formatExpr(e.Value, precLowest)

	case *BinaryExpr:
		prec := binOpPrec[e.Op]
		lp, rp := prec, prec+1
		if e.Op == OpConcat || e.Op == OpPow {
			lp, rp = prec+1, prec
		}
		out := formatExpr(e.L, lp) + " " + binOpSyms[e.Op] + " " + formatExpr(e.R, rp)
		if prec < outer {
			return "(" + out + ")"
		}
		return out

	case *UnaryExpr:
		var sym string
		switch e.Op {
		case OpNot:
			sym = "not "
		case OpUnm:
			sym = "-"
		case OpLen:
			sym = "#"
		}
		out := sym + formatExpr(e.Operand, precUnary)
		if precUnary < outer {
			return "(" + out + ")"
		}
		return out

	case *ParenExpr:
		return "(" + formatExpr(e.Inner, precLowest) + ")"
	}
	return fmt.Sprintf("--[[unknown expression %T]]", expr)
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
