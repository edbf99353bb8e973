package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire format: externally tagged variants. Unit variants are bare strings
// ("Nil", "Dots", "Break"), everything else a single-key object whose value
// is the payload, with multi-field payloads as arrays:
//
//	{"Set":[[{"Id":"x"}],[{"Number":1}]]}
//	{"Add":[{"Id":"x"},{"Number":2}]}
//
// A chunk is a JSON array of statements.

const maxNesting = 512

var errTooDeep = errors.New("chunk exceeds maximum nesting depth")

var binOpByTag = map[string]BinOp{}

func init() {
	for op, name := range binOpNames {
		binOpByTag[name] = BinOp(op)
	}
}

// DecodeChunk parses a serialized chunk. Unknown variants, wrong payload
// arities and over-deep nesting are reported as errors, never panics.
func DecodeChunk(data []byte) ([]Stmt, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chunk must be an array of statements: %w", err)
	}
	return decodeStmts(raw, 0)
}

// EncodeChunk renders a chunk back to the wire format.
func EncodeChunk(stmts []Stmt) ([]byte, error) {
	return json.Marshal(orEmpty(stmts))
}

// variant splits a node into its tag and payload. Unit variants yield a nil
// payload.
func variant(raw json.RawMessage) (string, json.RawMessage, error) {
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		return tag, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", nil, fmt.Errorf("node must be a string or single-key object: %w", err)
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("node object must have exactly one key, got %d", len(obj))
	}
	for tag, payload := range obj {
		return tag, payload, nil
	}
	panic("unreachable")
}

func tuple(tag string, payload json.RawMessage, want int) ([]json.RawMessage, error) {
	parts, err := rawList(tag, payload)
	if err != nil {
		return nil, err
	}
	if len(parts) != want {
		return nil, fmt.Errorf("%s: expected %d payload elements, got %d", tag, want, len(parts))
	}
	return parts, nil
}

func rawList(tag string, payload json.RawMessage) ([]json.RawMessage, error) {
	if payload == nil {
		return nil, fmt.Errorf("%s: missing payload", tag)
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(payload, &parts); err != nil {
		return nil, fmt.Errorf("%s: payload must be an array: %w", tag, err)
	}
	return parts, nil
}

func decodeString(tag string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s: expected a string: %w", tag, err)
	}
	return s, nil
}

func decodeNames(tag string, raw json.RawMessage) ([]string, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("%s: expected a name list: %w", tag, err)
	}
	return names, nil
}

func decodeStmts(raws []json.RawMessage, depth int) ([]Stmt, error) {
	stmts := make([]Stmt, 0, len(raws))
	for _, raw := range raws {
		s, err := decodeStmt(raw, depth)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func decodeBlock(tag string, raw json.RawMessage, depth int) ([]Stmt, error) {
	parts, err := rawList(tag, raw)
	if err != nil {
		return nil, err
	}
	return decodeStmts(parts, depth+1)
}

func decodeStmt(raw json.RawMessage, depth int) (Stmt, error) {
	if depth > maxNesting {
		return nil, errTooDeep
	}
	tag, payload, err := variant(raw)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		if tag == "Break" {
			return &BreakStmt{}, nil
		}
		return nil, fmt.Errorf("unknown statement kind %q", tag)
	}

	switch tag {
	case "Do":
		body, err := decodeBlock(tag, payload, depth)
		if err != nil {
			return nil, err
		}
		return &DoStmt{Body: body}, nil

	case "Set":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		targetRaws, err := rawList(tag, parts[0])
		if err != nil {
			return nil, err
		}
		if len(targetRaws) == 0 {
			return nil, errors.New("Set: at least one target required")
		}
		targets := make([]LHS, 0, len(targetRaws))
		for _, tr := range targetRaws {
			e, err := decodeExpr(tr, depth+1)
			if err != nil {
				return nil, err
			}
			lhs, ok := e.(LHS)
			if !ok {
				return nil, fmt.Errorf("Set: target must be a name or index expression")
			}
			targets = append(targets, lhs)
		}
		values, err := decodeExprList(tag, parts[1], depth)
		if err != nil {
			return nil, err
		}
		return &SetStmt{Targets: targets, Values: values}, nil

	case "While":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(parts[0], depth+1)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(tag, parts[1], depth)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body}, nil

	case "Repeat":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(tag, parts[0], depth)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(parts[1], depth+1)
		if err != nil {
			return nil, err
		}
		return &RepeatStmt{Body: body, Cond: cond}, nil

	case "If":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		clauseRaws, err := rawList(tag, parts[0])
		if err != nil {
			return nil, err
		}
		if len(clauseRaws) == 0 {
			return nil, errors.New("If: at least one clause required")
		}
		clauses := make([]IfClause, 0, len(clauseRaws))
		for _, cr := range clauseRaws {
			pair, err := tuple("If clause", cr, 2)
			if err != nil {
				return nil, err
			}
			cond, err := decodeExpr(pair[0], depth+1)
			if err != nil {
				return nil, err
			}
			body, err := decodeBlock("If clause", pair[1], depth)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, IfClause{Cond: cond, Body: body})
		}
		elseBody, err := decodeBlock("If else", parts[1], depth)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Clauses: clauses, Else: elseBody}, nil

	case "Fornum":
		parts, err := rawList(tag, payload)
		if err != nil {
			return nil, err
		}
		if len(parts) != 4 && len(parts) != 5 {
			return nil, fmt.Errorf("Fornum: expected 4 or 5 payload elements, got %d", len(parts))
		}
		name, err := decodeString(tag, parts[0])
		if err != nil {
			return nil, err
		}
		start, err := decodeExpr(parts[1], depth+1)
		if err != nil {
			return nil, err
		}
		limit, err := decodeExpr(parts[2], depth+1)
		if err != nil {
			return nil, err
		}
		var step Expr
		bodyRaw := parts[3]
		if len(parts) == 5 {
			if !isNull(parts[3]) {
				step, err = decodeExpr(parts[3], depth+1)
				if err != nil {
					return nil, err
				}
			}
			bodyRaw = parts[4]
		}
		body, err := decodeBlock(tag, bodyRaw, depth)
		if err != nil {
			return nil, err
		}
		return &NumForStmt{Name: name, Start: start, Limit: limit, Step: step, Body: body}, nil

	case "Forin":
		parts, err := tuple(tag, payload, 3)
		if err != nil {
			return nil, err
		}
		names, err := decodeNames(tag, parts[0])
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, errors.New("Forin: at least one name required")
		}
		exprs, err := decodeExprList(tag, parts[1], depth)
		if err != nil {
			return nil, err
		}
		if len(exprs) == 0 {
			return nil, errors.New("Forin: at least one iterator expression required")
		}
		body, err := decodeBlock(tag, parts[2], depth)
		if err != nil {
			return nil, err
		}
		return &GenForStmt{Names: names, Exprs: exprs, Body: body}, nil

	case "Local":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		names, err := decodeNames(tag, parts[0])
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, errors.New("Local: at least one name required")
		}
		values, err := decodeExprList(tag, parts[1], depth)
		if err != nil {
			return nil, err
		}
		return &LocalStmt{Names: names, Values: values}, nil

	case "Localrec":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		name, err := decodeString(tag, parts[0])
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(parts[1], depth+1)
		if err != nil {
			return nil, err
		}
		fn, ok := e.(*FunctionExpr)
		if !ok {
			return nil, errors.New("Localrec: value must be a function literal")
		}
		return &LocalFuncStmt{Name: name, Fn: fn}, nil

	case "Return":
		values, err := decodeExprList(tag, payload, depth)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Values: values}, nil

	case "Call", "Invoke":
		e, err := decodeExpr(raw, depth)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Call: e}, nil

	case "Goto":
		label, err := decodeString(tag, payload)
		if err != nil {
			return nil, err
		}
		return &GotoStmt{Label: label}, nil

	case "Label":
		name, err := decodeString(tag, payload)
		if err != nil {
			return nil, err
		}
		return &LabelStmt{Name: name}, nil
	}
	return nil, fmt.Errorf("unknown statement kind %q", tag)
}

func decodeExprList(tag string, raw json.RawMessage, depth int) ([]Expr, error) {
	parts, err := rawList(tag, raw)
	if err != nil {
		return nil, err
	}
	exprs := make([]Expr, 0, len(parts))
	for _, p := range parts {
		e, err := decodeExpr(p, depth+1)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func decodeExpr(raw json.RawMessage, depth int) (Expr, error) {
	if depth > maxNesting {
		return nil, errTooDeep
	}
	tag, payload, err := variant(raw)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		switch tag {
		case "Nil":
			return &NilExpr{}, nil
		case "Dots":
			return &VarargExpr{}, nil
		}
		return nil, fmt.Errorf("unknown expression kind %q", tag)
	}

	if op, ok := binOpByTag[tag]; ok {
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		l, err := decodeExpr(parts[0], depth+1)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(parts[1], depth+1)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, L: l, R: r}, nil
	}

	switch tag {
	case "Boolean":
		var b bool
		if err := json.Unmarshal(payload, &b); err != nil {
			return nil, fmt.Errorf("Boolean: %w", err)
		}
		return &BoolExpr{Value: b}, nil

	case "Number":
		var f float64
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("Number: %w", err)
		}
		return &NumberExpr{Value: f}, nil

	case "String":
		s, err := decodeString(tag, payload)
		if err != nil {
			return nil, err
		}
		return &StringExpr{Value: s}, nil

	case "Id":
		name, err := decodeString(tag, payload)
		if err != nil {
			return nil, err
		}
		return &NameExpr{Name: name}, nil

	case "Not", "Unm", "Len":
		operand, err := decodeExpr(payload, depth+1)
		if err != nil {
			return nil, err
		}
		var op UnOp
		switch tag {
		case "Not":
			op = OpNot
		case "Unm":
			op = OpUnm
		case "Len":
			op = OpLen
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil

	case "Paren":
		inner, err := decodeExpr(payload, depth+1)
		if err != nil {
			return nil, err
		}
		return &ParenExpr{Inner: inner}, nil

	case "Index":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		obj, err := decodeExpr(parts[0], depth+1)
		if err != nil {
			return nil, err
		}
		key, err := decodeExpr(parts[1], depth+1)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{Object: obj, Key: key}, nil

	case "Call":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		fn, err := decodeExpr(parts[0], depth+1)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprList(tag, parts[1], depth)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Fn: fn, Args: args}, nil

	case "Invoke":
		parts, err := tuple(tag, payload, 3)
		if err != nil {
			return nil, err
		}
		obj, err := decodeExpr(parts[0], depth+1)
		if err != nil {
			return nil, err
		}
		method, err := decodeString(tag, parts[1])
		if err != nil {
			return nil, err
		}
		args, err := decodeExprList(tag, parts[2], depth)
		if err != nil {
			return nil, err
		}
		return &InvokeExpr{Object: obj, Method: method, Args: args}, nil

	case "Function":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		wireParams, err := decodeNames(tag, parts[0])
		if err != nil {
			return nil, err
		}
		params, vararg, err := splitParams(wireParams)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(tag, parts[1], depth)
		if err != nil {
			return nil, err
		}
		return &FunctionExpr{Params: params, Vararg: vararg, Body: body}, nil

	case "Table":
		items, err := decodeExprList(tag, payload, depth)
		if err != nil {
			return nil, err
		}
		return &TableExpr{Items: items}, nil

	case "Pair":
		parts, err := tuple(tag, payload, 2)
		if err != nil {
			return nil, err
		}
		key, err := decodeExpr(parts[0], depth+1)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(parts[1], depth+1)
		if err != nil {
			return nil, err
		}
		return &PairExpr{Key: key, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown expression kind %q", tag)
}

// splitParams strips a trailing "..." vararg marker from a wire parameter
// list.
func splitParams(wire []string) ([]string, bool, error) {
	for i, p := range wire {
		if p == "..." && i != len(wire)-1 {
			return nil, false, errors.New("Function: \"...\" must be the last parameter")
		}
	}
	if n := len(wire); n > 0 && wire[n-1] == "..." {
		return wire[:n-1], true, nil
	}
	return wire, false, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func tagged(tag string, payload any) ([]byte, error) {
	return json.Marshal(map[string]any{tag: payload})
}

func orEmpty[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

func (e *NilExpr) MarshalJSON() ([]byte, error)    { return []byte(`"Nil"`), nil }
func (e *VarargExpr) MarshalJSON() ([]byte, error) { return []byte(`"Dots"`), nil }
func (s *BreakStmt) MarshalJSON() ([]byte, error)  { return []byte(`"Break"`), nil }

func (e *BoolExpr) MarshalJSON() ([]byte, error)   { return tagged("Boolean", e.Value) }
func (e *NumberExpr) MarshalJSON() ([]byte, error) { return tagged("Number", e.Value) }
func (e *StringExpr) MarshalJSON() ([]byte, error) { return tagged("String", e.Value) }
func (e *NameExpr) MarshalJSON() ([]byte, error)   { return tagged("Id", e.Name) }

func (e *BinaryExpr) MarshalJSON() ([]byte, error) {
	return tagged(e.Op.String(), []any{e.L, e.R})
}

func (e *UnaryExpr) MarshalJSON() ([]byte, error) {
	return tagged(e.Op.String(), e.Operand)
}

func (e *ParenExpr) MarshalJSON() ([]byte, error) { return tagged("Paren", e.Inner) }

func (e *IndexExpr) MarshalJSON() ([]byte, error) {
	return tagged("Index", []any{e.Object, e.Key})
}

func (e *CallExpr) MarshalJSON() ([]byte, error) {
	return tagged("Call", []any{e.Fn, orEmpty(e.Args)})
}

func (e *InvokeExpr) MarshalJSON() ([]byte, error) {
	return tagged("Invoke", []any{e.Object, e.Method, orEmpty(e.Args)})
}

func (e *FunctionExpr) MarshalJSON() ([]byte, error) {
	wire := append([]string{}, e.Params...)
	if e.Vararg {
		wire = append(wire, "...")
	}
	return tagged("Function", []any{wire, orEmpty(e.Body)})
}

func (e *TableExpr) MarshalJSON() ([]byte, error) { return tagged("Table", orEmpty(e.Items)) }

func (e *PairExpr) MarshalJSON() ([]byte, error) {
	return tagged("Pair", []any{e.Key, e.Value})
}

func (s *DoStmt) MarshalJSON() ([]byte, error) { return tagged("Do", orEmpty(s.Body)) }

func (s *SetStmt) MarshalJSON() ([]byte, error) {
	return tagged("Set", []any{orEmpty(s.Targets), orEmpty(s.Values)})
}

func (s *WhileStmt) MarshalJSON() ([]byte, error) {
	return tagged("While", []any{s.Cond, orEmpty(s.Body)})
}

func (s *RepeatStmt) MarshalJSON() ([]byte, error) {
	return tagged("Repeat", []any{orEmpty(s.Body), s.Cond})
}

func (s *IfStmt) MarshalJSON() ([]byte, error) {
	clauses := make([]any, 0, len(s.Clauses))
	for _, c := range s.Clauses {
		clauses = append(clauses, []any{c.Cond, orEmpty(c.Body)})
	}
	return tagged("If", []any{clauses, orEmpty(s.Else)})
}

func (s *NumForStmt) MarshalJSON() ([]byte, error) {
	var step any
	if s.Step != nil {
		step = s.Step
	}
	return tagged("Fornum", []any{s.Name, s.Start, s.Limit, step, orEmpty(s.Body)})
}

func (s *GenForStmt) MarshalJSON() ([]byte, error) {
	return tagged("Forin", []any{orEmpty(s.Names), orEmpty(s.Exprs), orEmpty(s.Body)})
}

func (s *LocalStmt) MarshalJSON() ([]byte, error) {
	return tagged("Local", []any{orEmpty(s.Names), orEmpty(s.Values)})
}

func (s *LocalFuncStmt) MarshalJSON() ([]byte, error) {
	return tagged("Localrec", []any{s.Name, s.Fn})
}

func (s *ReturnStmt) MarshalJSON() ([]byte, error) { return tagged("Return", orEmpty(s.Values)) }

func (s *CallStmt) MarshalJSON() ([]byte, error) { return json.Marshal(s.Call) }

func (s *GotoStmt) MarshalJSON() ([]byte, error)  { return tagged("Goto", s.Label) }
func (s *LabelStmt) MarshalJSON() ([]byte, error) { return tagged("Label", s.Name) }
