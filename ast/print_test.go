package ast

import "testing"

func TestFormatExprParens(t *testing.T) {
	a, b, c := &NameExpr{Name: "a"}, &NameExpr{Name: "b"}, &NameExpr{Name: "c"}

	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{
			"tight binding needs no parens",
			&BinaryExpr{Op: OpAdd, L: a, R: &BinaryExpr{Op: OpMul, L: b, R: c}},
			"a + b * c",
		},
		{
			"loose operand on the left",
			&BinaryExpr{Op: OpMul, L: &BinaryExpr{Op: OpAdd, L: a, R: b}, R: c},
			"(a + b) * c",
		},
		{
			"loose operand on the right",
			&BinaryExpr{Op: OpMul, L: a, R: &BinaryExpr{Op: OpAdd, L: b, R: c}},
			"a * (b + c)",
		},
		{
			"power is right associative",
			&BinaryExpr{Op: OpPow, L: a, R: &BinaryExpr{Op: OpPow, L: b, R: c}},
			"a ^ b ^ c",
		},
		{
			"left nested power keeps parens",
			&BinaryExpr{Op: OpPow, L: &BinaryExpr{Op: OpPow, L: a, R: b}, R: c},
			"(a ^ b) ^ c",
		},
		{
			"left nested concat keeps parens",
			&BinaryExpr{Op: OpConcat, L: &BinaryExpr{Op: OpConcat, L: a, R: b}, R: c},
			"(a .. b) .. c",
		},
		{
			"negated product",
			&UnaryExpr{Op: OpUnm, Operand: &BinaryExpr{Op: OpMul, L: a, R: b}},
			"-(a * b)",
		},
		{
			"negation inside product",
			&BinaryExpr{Op: OpMul, L: &UnaryExpr{Op: OpUnm, Operand: a}, R: b},
			"-a * b",
		},
		{
			"not of comparison",
			&UnaryExpr{Op: OpNot, Operand: &BinaryExpr{Op: OpEq, L: a, R: b}},
			"not (a == b)",
		},
		{
			"and or chain",
			&BinaryExpr{Op: OpOr, L: &BinaryExpr{Op: OpAnd, L: a, R: b}, R: c},
			"a and b or c",
		},
		{
			"non identifier key uses brackets",
			&IndexExpr{Object: a, Key: &StringExpr{Value: "not id"}},
			`a["not id"]`,
		},
		{
			"numeric pair key",
			&TableExpr{Items: []Expr{&PairExpr{Key: &NumberExpr{Value: 1}, Value: b}}},
			"{[1] = b}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatExpr(tt.expr); got != tt.want {
				t.Errorf("FormatExpr = %q, want %q", got, tt.want)
			}
		})
	}
}
