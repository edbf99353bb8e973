package types

import (
	"math"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{"  10  ", 10, true},
		{"\t-3.5\n", -3.5, true},
		{"+4", 4, true},
		{"0.5", 0.5, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"1e3", 1000, true},
		{"2.5E-1", 0.25, true},
		{"0x10", 16, true},
		{"0XFF", 255, true},
		{"-0x10", -16, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"10a", 0, false},
		{"1e", 0, false},
		{"0x", 0, false},
		{"0xg", 0, false},
		{"0x1p4", 0, false},
		{"inf", 0, false},
		{"nan", 0, false},
		{"1 2", 0, false},
		{"--5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseNumberBase(t *testing.T) {
	tests := []struct {
		in   string
		base int
		want float64
		ok   bool
	}{
		{"ff", 16, 255, true},
		{"FF", 16, 255, true},
		{"1010", 2, 10, true},
		{"z", 36, 35, true},
		{"-10", 8, -8, true},
		{" 77 ", 8, 63, true},
		{"8", 8, 0, false},
		{"", 16, 0, false},
		{"-", 16, 0, false},
		{"10", 1, 0, false},
		{"10", 37, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumberBase(tt.in, tt.base)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseNumberBase(%q, %d) = %v, %v; want %v, %v",
				tt.in, tt.base, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{3.5, "3.5"},
		{-0.1, "-0.1"},
		{1e20, "1e+20"},
		{1e-7, "1e-07"},
		{1.0 / 3, "0.33333333333333"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "nan"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := NumberToString(tt.in); got != tt.want {
			t.Errorf("NumberToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	if Nil.Truthy() || False.Truthy() {
		t.Error("nil and false must be falsy")
	}
	for _, v := range []Value{True, NewNumber(0), NewNumber(1), NewStr(""), NewStr("x"), NewTable()} {
		if !v.Truthy() {
			t.Errorf("%s must be truthy", v)
		}
	}
}

func TestRawEquality(t *testing.T) {
	tbl := NewTable()
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", NewNumber(1), NewNumber(1), true},
		{"negative zero", NewNumber(0), NewNumber(math.Copysign(0, -1)), true},
		{"nan", NewNumber(math.NaN()), NewNumber(math.NaN()), false},
		{"strings", NewStr("a"), NewStr("a"), true},
		{"string vs number never coerces", NewStr("1"), NewNumber(1), false},
		{"number vs string never coerces", NewNumber(1), NewStr("1"), false},
		{"nil vs false", Nil, False, false},
		{"table identity", tbl, tbl, true},
		{"distinct tables", NewTable(), NewTable(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCoerceToString(t *testing.T) {
	if s, ok := CoerceToString(NewNumber(12)); !ok || s != "12" {
		t.Errorf("number coercion got %q, %v", s, ok)
	}
	if s, ok := CoerceToString(NewStr("x")); !ok || s != "x" {
		t.Errorf("string passthrough got %q, %v", s, ok)
	}
	if _, ok := CoerceToString(True); ok {
		t.Error("boolean must not coerce to string")
	}
	if _, ok := CoerceToString(Nil); ok {
		t.Error("nil must not coerce to string")
	}
}

func TestContextBudgets(t *testing.T) {
	ctx := NewContext()
	ctx.MaxDepth = 3
	for i := 0; i < 3; i++ {
		if !ctx.EnterCall("f") {
			t.Fatalf("EnterCall failed at depth %d", i)
		}
	}
	if ctx.EnterCall("f") {
		t.Error("EnterCall must fail past the depth budget")
	}
	ctx.LeaveCall()
	if !ctx.EnterCall("g") {
		t.Error("EnterCall must succeed again after LeaveCall")
	}

	ctx2 := NewContext()
	ctx2.StepLimit = 2
	if !ctx2.ConsumeStep() || !ctx2.ConsumeStep() {
		t.Fatal("steps within budget must pass")
	}
	if ctx2.ConsumeStep() {
		t.Error("ConsumeStep must fail past the budget")
	}
}
