package ast

import (
	"strings"
	"testing"
)

func TestDecodeChunk(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string // FormatChunk rendering
	}{
		{
			"local with literal",
			`[{"Local":[["x"],[{"Number":42}]]}]`,
			"local x = 42\n",
		},
		{
			"unit variants",
			`[{"Local":[["a","b"],["Nil",{"Boolean":true}]]}, "Break"]`,
			"local a, b = nil, true\nbreak\n",
		},
		{
			"assignment to name and index",
			`[{"Set":[[{"Id":"x"},{"Index":[{"Id":"t"},{"String":"k"}]}],[{"Number":1},{"Number":2}]]}]`,
			"x, t.k = 1, 2\n",
		},
		{
			"arithmetic precedence",
			`[{"Return":[{"Add":[{"Id":"a"},{"Mul":[{"Id":"b"},{"Id":"c"}]}]}]}]`,
			"return a + b * c\n",
		},
		{
			"right associative concat",
			`[{"Return":[{"Concat":[{"Id":"a"},{"Concat":[{"Id":"b"},{"Id":"c"}]}]}]}]`,
			"return a .. b .. c\n",
		},
		{
			"while with call",
			`[{"While":[{"Lt":[{"Id":"i"},{"Number":10}]},[{"Call":[{"Id":"f"},[{"Id":"i"}]]}]]}]`,
			"while i < 10 do\n  f(i)\nend\n",
		},
		{
			"repeat sees condition",
			`[{"Repeat":[[{"Local":[["x"],[]]}],{"Id":"x"}]}]`,
			"repeat\n  local x\nuntil x\n",
		},
		{
			"if elseif else",
			`[{"If":[[[{"Id":"a"},[{"Return":[{"Number":1}]}]],[{"Id":"b"},[{"Return":[{"Number":2}]}]]],[{"Return":[{"Number":3}]}]]}]`,
			"if a then\n  return 1\nelseif b then\n  return 2\nelse\n  return 3\nend\n",
		},
		{
			"numeric for with step",
			`[{"Fornum":["i",{"Number":1},{"Number":10},{"Number":2},[{"Call":[{"Id":"f"},[{"Id":"i"}]]}]]}]`,
			"for i = 1, 10, 2 do\n  f(i)\nend\n",
		},
		{
			"numeric for null step",
			`[{"Fornum":["i",{"Number":1},{"Number":3},null,[]]}]`,
			"for i = 1, 3 do\nend\n",
		},
		{
			"numeric for four element form",
			`[{"Fornum":["i",{"Number":1},{"Number":3},[]]}]`,
			"for i = 1, 3 do\nend\n",
		},
		{
			"generic for",
			`[{"Forin":[["k","v"],[{"Call":[{"Id":"pairs"},[{"Id":"t"}]]}],[]]}]`,
			"for k, v in pairs(t) do\nend\n",
		},
		{
			"vararg function",
			`[{"Localrec":["f",{"Function":[["a","..."],[{"Return":["Dots"]}]]}]}]`,
			"local function f(a, ...)\n  return ...\nend\n",
		},
		{
			"table constructor with pairs",
			`[{"Return":[{"Table":[{"Number":1},{"Pair":[{"String":"k"},{"Number":2}]},{"Pair":[{"Boolean":true},{"Number":3}]}]}]}]`,
			"return {1, k = 2, [true] = 3}\n",
		},
		{
			"method invoke",
			`[{"Invoke":[{"Id":"obj"},"greet",[{"String":"hi"}]]}]`,
			"obj:greet(\"hi\")\n",
		},
		{
			"unary and paren",
			`[{"Return":[{"Unm":{"Paren":{"Add":[{"Id":"a"},{"Id":"b"}]}}},{"Len":{"Id":"t"}},{"Not":{"Id":"x"}}]}]`,
			"return -(a + b), #t, not x\n",
		},
		{
			"goto and label",
			`[{"Label":"top"},{"Goto":"top"}]`,
			"::top::\ngoto top\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := DecodeChunk([]byte(tt.json))
			if err != nil {
				t.Fatalf("DecodeChunk: %v", err)
			}
			if got := FormatChunk(stmts); got != tt.want {
				t.Errorf("rendered %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeChunkErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string // error substring
	}{
		{"not an array", `{"Local":[["x"],[]]}`, "must be an array"},
		{"unknown statement", `[{"Switch":[]}]`, `unknown statement kind "Switch"`},
		{"unknown expression", `[{"Return":[{"Ternary":[]}]}]`, `unknown expression kind "Ternary"`},
		{"unknown unit variant", `["Continue"]`, `unknown statement kind "Continue"`},
		{"two key object", `[{"Local":[["x"],[]],"Extra":1}]`, "exactly one key"},
		{"set arity", `[{"Set":[[{"Id":"x"}]]}]`, "expected 2 payload elements"},
		{"set to literal", `[{"Set":[[{"Number":1}],[{"Number":2}]]}]`, "target must be a name or index"},
		{"set no targets", `[{"Set":[[],[{"Number":1}]]}]`, "at least one target"},
		{"localrec non function", `[{"Localrec":["f",{"Number":1}]}]`, "must be a function literal"},
		{"vararg not last", `[{"Return":[{"Function":[["...","a"],[]]}]}]`, `"..." must be the last parameter`},
		{"fornum arity", `[{"Fornum":["i",{"Number":1},[]]}]`, "expected 4 or 5"},
		{"boolean payload", `[{"Return":[{"Boolean":"yes"}]}]`, "Boolean"},
		{"number payload", `[{"Return":[{"Number":"forty"}]}]`, "Number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeChunk([]byte(tt.json))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDecodeChunkDepthBound(t *testing.T) {
	depth := maxNesting + 10
	deep := `[{"Return":[` + strings.Repeat(`{"Paren":`, depth) + `"Nil"` +
		strings.Repeat(`}`, depth) + `]}]`
	_, err := DecodeChunk([]byte(deep))
	if err == nil {
		t.Fatal("expected a nesting depth error")
	}
	if !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("error %q does not mention nesting depth", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	chunk := []Stmt{
		&LocalFuncStmt{
			Name: "count",
			Fn: &FunctionExpr{
				Params: []string{"n"},
				Vararg: true,
				Body: []Stmt{
					&NumForStmt{
						Name:  "i",
						Start: &NumberExpr{Value: 1},
						Limit: &NameExpr{Name: "n"},
						Body: []Stmt{
							&CallStmt{Call: &CallExpr{
								Fn:   &NameExpr{Name: "print"},
								Args: []Expr{&NameExpr{Name: "i"}, &VarargExpr{}},
							}},
						},
					},
					&ReturnStmt{Values: []Expr{
						&BinaryExpr{Op: OpConcat, L: &StringExpr{Value: "done "}, R: &NameExpr{Name: "n"}},
					}},
				},
			},
		},
		&SetStmt{
			Targets: []LHS{&IndexExpr{Object: &NameExpr{Name: "t"}, Key: &StringExpr{Value: "k"}}},
			Values:  []Expr{&TableExpr{Items: []Expr{&PairExpr{Key: &StringExpr{Value: "a"}, Value: &BoolExpr{Value: true}}}}},
		},
		&CallStmt{Call: &InvokeExpr{Object: &NameExpr{Name: "t"}, Method: "go", Args: nil}},
	}

	data, err := EncodeChunk(chunk)
	if err != nil {
		t.Fatalf("EncodeChunk: %v", err)
	}
	back, err := DecodeChunk(data)
	if err != nil {
		t.Fatalf("DecodeChunk of encoded form: %v", err)
	}
	if got, want := FormatChunk(back), FormatChunk(chunk); got != want {
		t.Errorf("round trip changed rendering:\ngot  %q\nwant %q", got, want)
	}
}
