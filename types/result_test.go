package types

import "testing"

func TestResultConstructors(t *testing.T) {
	t.Run("Ok", func(t *testing.T) {
		r := Ok(NewNumber(42))
		if !r.IsNormal() {
			t.Error("Ok() should create a normal result")
		}
		if len(r.Vals) != 1 || !r.Vals[0].Equal(NewNumber(42)) {
			t.Errorf("expected one value 42, got %v", r.Vals)
		}
	})

	t.Run("OkMulti", func(t *testing.T) {
		r := OkMulti([]Value{NewNumber(1), NewStr("a")})
		if !r.IsNormal() {
			t.Error("OkMulti() should create a normal result")
		}
		if len(r.Vals) != 2 {
			t.Errorf("expected two values, got %v", r.Vals)
		}
	})

	t.Run("None", func(t *testing.T) {
		r := None()
		if !r.IsNormal() {
			t.Error("None() should create a normal result")
		}
		if len(r.Vals) != 0 {
			t.Errorf("expected no values, got %v", r.Vals)
		}
		if !IsNil(r.First()) {
			t.Errorf("First() on an empty result should be nil, got %v", r.First())
		}
	})

	t.Run("Return", func(t *testing.T) {
		r := Return([]Value{NewNumber(7)})
		if r.Flow != FlowReturn {
			t.Errorf("expected FlowReturn, got %v", r.Flow)
		}
		if !r.First().Equal(NewNumber(7)) {
			t.Errorf("expected value 7, got %v", r.First())
		}
	})

	t.Run("Break", func(t *testing.T) {
		r := Break()
		if r.Flow != FlowBreak {
			t.Errorf("expected FlowBreak, got %v", r.Flow)
		}
	})

	t.Run("Throw", func(t *testing.T) {
		payload := NewTable()
		r := Throw(payload)
		if !r.IsError() {
			t.Error("Throw() should create an error result")
		}
		if r.Err != Value(payload) {
			t.Errorf("error value must be kept by identity, got %v", r.Err)
		}
	})

	t.Run("Throwf", func(t *testing.T) {
		r := Throwf("bad %s near %d", "thing", 3)
		if !r.IsError() {
			t.Error("Throwf() should create an error result")
		}
		if !r.Err.Equal(NewStr("bad thing near 3")) {
			t.Errorf("expected formatted message, got %v", r.Err)
		}
	})
}

func TestResultPredicates(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		isNormal bool
		isError  bool
	}{
		{"ok", Ok(NewNumber(1)), true, false},
		{"none", None(), true, false},
		{"return", Return(nil), false, false},
		{"break", Break(), false, false},
		{"throw", Throwf("boom"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.IsNormal() != tt.isNormal {
				t.Errorf("IsNormal() = %v, want %v", tt.result.IsNormal(), tt.isNormal)
			}
			if tt.result.IsError() != tt.isError {
				t.Errorf("IsError() = %v, want %v", tt.result.IsError(), tt.isError)
			}
		})
	}
}

func TestResultFirst(t *testing.T) {
	r := OkMulti([]Value{NewStr("a"), NewStr("b")})
	if !r.First().Equal(NewStr("a")) {
		t.Errorf("First() = %v, want a", r.First())
	}
	if got := OkMulti(nil).First(); !IsNil(got) {
		t.Errorf("First() on empty = %v, want nil", got)
	}
}
