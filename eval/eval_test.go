package eval

import (
	"context"
	"io"
	"testing"

	"luax/types"
)

// Helper to decode and run a serialized chunk, failing the test on any fault
func runChunk(t *testing.T, src string, args ...types.Value) []types.Value {
	t.Helper()
	in := New(Options{Output: io.Discard})
	vals, err := in.Run(context.Background(), []byte(src), args...)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	return vals
}

// Helper wrapping a single expression into a return chunk
func evalExpr(t *testing.T, expr string) []types.Value {
	t.Helper()
	return runChunk(t, `[{"Return":[`+expr+`]}]`)
}

// Helper to run a chunk expected to fault, returning the fault
func runFault(t *testing.T, src string) *LuaError {
	t.Helper()
	in := New(Options{Output: io.Discard})
	_, err := in.Run(context.Background(), []byte(src))
	if err == nil {
		t.Fatal("expected an error, chunk completed")
	}
	le, ok := err.(*LuaError)
	if !ok {
		t.Fatalf("expected a language fault, got %T: %v", err, err)
	}
	return le
}

// Helper comparing a result list against expected values
func wantValues(t *testing.T, got []types.Value, want ...types.Value) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values %v, want %d values %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("value %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func num(f float64) types.Value { return types.NewNumber(f) }

func str(s string) types.Value { return types.NewStr(s) }

func boolv(b bool) types.Value { return types.NewBool(b) }

func TestEvalLiterals(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want types.Value
	}{
		{"nil", `"Nil"`, types.Nil},
		{"true", `{"Boolean":true}`, types.True},
		{"false", `{"Boolean":false}`, types.False},
		{"integer", `{"Number":42}`, num(42)},
		{"float", `{"Number":3.14}`, num(3.14)},
		{"string", `{"String":"hello"}`, str("hello")},
		{"empty string", `{"String":""}`, str("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValues(t, evalExpr(t, tt.expr), tt.want)
		})
	}
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"add", `{"Add":[{"Number":1},{"Number":2}]}`, 3},
		{"sub", `{"Sub":[{"Number":10},{"Number":3}]}`, 7},
		{"mul", `{"Mul":[{"Number":4},{"Number":5}]}`, 20},
		{"div", `{"Div":[{"Number":7},{"Number":2}]}`, 3.5},
		{"mod floors toward the divisor", `{"Mod":[{"Number":-5},{"Number":3}]}`, 1},
		{"pow", `{"Pow":[{"Number":2},{"Number":10}]}`, 1024},
		{"idiv", `{"Idiv":[{"Number":-7},{"Number":2}]}`, -4},
		{"unary minus", `{"Unm":{"Number":5}}`, -5},
		{"nested", `{"Mul":[{"Paren":{"Add":[{"Number":1},{"Number":2}]}},{"Number":3}]}`, 9},
		{"string left operand coerces", `{"Add":[{"String":"10"},{"Number":5}]}`, 15},
		{"string both operands coerce", `{"Mul":[{"String":"3"},{"String":"4"}]}`, 12},
		{"hex string coerces", `{"Add":[{"String":"0x10"},{"Number":0}]}`, 16},
		{"unary minus coerces", `{"Unm":{"String":"3"}}`, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValues(t, evalExpr(t, tt.expr), num(tt.want))
		})
	}
}

func TestEvalComparison(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"eq numbers", `{"Eq":[{"Number":1},{"Number":1}]}`, true},
		{"eq distinct", `{"Eq":[{"Number":1},{"Number":2}]}`, false},
		{"eq never coerces", `{"Eq":[{"Number":1},{"String":"1"}]}`, false},
		{"eq nil nil", `{"Eq":["Nil","Nil"]}`, true},
		{"ne", `{"Ne":[{"Number":1},{"Number":2}]}`, true},
		{"lt numbers", `{"Lt":[{"Number":1},{"Number":2}]}`, true},
		{"lt strings", `{"Lt":[{"String":"abc"},{"String":"abd"}]}`, true},
		{"le equal", `{"Le":[{"Number":2},{"Number":2}]}`, true},
		{"gt", `{"Gt":[{"Number":3},{"Number":2}]}`, true},
		{"ge", `{"Ge":[{"Number":2},{"Number":3}]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValues(t, evalExpr(t, tt.expr), boolv(tt.want))
		})
	}
}

func TestEvalLogical(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want types.Value
	}{
		{"and returns second when first truthy", `{"And":[{"Number":1},{"Number":2}]}`, num(2)},
		{"and returns first when falsy", `{"And":[{"Boolean":false},{"Number":2}]}`, types.False},
		{"and on nil", `{"And":["Nil",{"Number":2}]}`, types.Nil},
		{"or returns first when truthy", `{"Or":[{"Number":1},{"Number":2}]}`, num(1)},
		{"or returns second when first falsy", `{"Or":["Nil",{"String":"x"}]}`, str("x")},
		{"or keeps false", `{"Or":["Nil",{"Boolean":false}]}`, types.False},
		{"zero is truthy", `{"And":[{"Number":0},{"String":"yes"}]}`, str("yes")},
		{"not", `{"Not":{"Number":0}}`, types.False},
		{"not nil", `{"Not":"Nil"}`, types.True},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValues(t, evalExpr(t, tt.expr), tt.want)
		})
	}
}

func TestEvalShortCircuit(t *testing.T) {
	// the unreached side would fault if evaluated
	vals := runChunk(t, `[{"Return":[{"And":[{"Boolean":false},{"Call":[{"Id":"error"},[{"String":"unreached"}]]}]},{"Or":[{"Number":7},{"Call":[{"Id":"error"},[{"String":"unreached"}]]}]}]}]`)
	wantValues(t, vals, types.False, num(7))
}

func TestEvalConcat(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"strings", `{"Concat":[{"String":"foo"},{"String":"bar"}]}`, "foobar"},
		{"numbers render", `{"Concat":[{"Number":1},{"Number":2}]}`, "12"},
		{"mixed", `{"Concat":[{"String":"v="},{"Number":1.5}]}`, "v=1.5"},
		{"chained", `{"Concat":[{"String":"a"},{"Concat":[{"String":"b"},{"String":"c"}]}]}`, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantValues(t, evalExpr(t, tt.expr), str(tt.want))
		})
	}
}

func TestEvalLength(t *testing.T) {
	wantValues(t, evalExpr(t, `{"Len":{"String":"hello"}}`), num(5))
	wantValues(t, evalExpr(t, `{"Len":{"String":""}}`), num(0))
	wantValues(t, evalExpr(t, `{"Len":{"Table":[{"Number":1},{"Number":2},{"Number":3}]}}`), num(3))
}

func TestEvalVararg(t *testing.T) {
	// the chunk body is a vararg function fed by the run arguments
	vals := runChunk(t, `[{"Return":["Dots"]}]`, num(1), str("x"), types.True)
	wantValues(t, vals, num(1), str("x"), types.True)

	// ... not in final position adjusts to its first value
	vals = runChunk(t, `[{"Return":["Dots",{"Number":9}]}]`, num(1), num(2))
	wantValues(t, vals, num(1), num(9))

	// empty varargs spread to nothing
	vals = runChunk(t, `[{"Return":["Dots"]}]`)
	wantValues(t, vals)
}

func TestEvalMultipleValues(t *testing.T) {
	const three = `{"Localrec":["f",{"Function":[[],[{"Return":[{"Number":1},{"Number":2},{"Number":3}]}]]}]}`

	t.Run("final call spreads", func(t *testing.T) {
		vals := runChunk(t, `[`+three+`,{"Return":[{"Call":[{"Id":"f"},[]]}]}]`)
		wantValues(t, vals, num(1), num(2), num(3))
	})

	t.Run("inner call truncates", func(t *testing.T) {
		vals := runChunk(t, `[`+three+`,{"Return":[{"Call":[{"Id":"f"},[]]},{"Number":10}]}]`)
		wantValues(t, vals, num(1), num(10))
	})

	t.Run("parentheses truncate", func(t *testing.T) {
		vals := runChunk(t, `[`+three+`,{"Return":[{"Paren":{"Call":[{"Id":"f"},[]]}}]}]`)
		wantValues(t, vals, num(1))
	})

	t.Run("call results feed call arguments", func(t *testing.T) {
		vals := runChunk(t, `[`+three+`,{"Localrec":["sum",{"Function":[["a","b","c"],[{"Return":[{"Add":[{"Id":"a"},{"Add":[{"Id":"b"},{"Id":"c"}]}]}]}]]}]},{"Return":[{"Call":[{"Id":"sum"},[{"Call":[{"Id":"f"},[]]}]]}]}]`)
		wantValues(t, vals, num(6))
	})
}

func TestEvalTableConstructor(t *testing.T) {
	vals := evalExpr(t, `{"Table":[{"Number":10},{"Pair":[{"String":"k"},{"String":"v"}]},{"Number":20}]}`)
	if len(vals) != 1 {
		t.Fatalf("expected one value, got %v", vals)
	}
	tbl, ok := vals[0].(*types.Table)
	if !ok {
		t.Fatalf("expected a table, got %T", vals[0])
	}
	if got := tbl.RawGetInt(1); !got.Equal(num(10)) {
		t.Errorf("t[1] = %s, want 10", got)
	}
	if got := tbl.RawGetInt(2); !got.Equal(num(20)) {
		t.Errorf("t[2] = %s, want 20", got)
	}
	if got := tbl.GetField("k"); !got.Equal(str("v")) {
		t.Errorf("t.k = %s, want v", got)
	}
	if tbl.Len() != 2 {
		t.Errorf("#t = %d, want 2", tbl.Len())
	}
}

func TestEvalClosureCapture(t *testing.T) {
	// counter factory: each call builds an independent upvalue
	const factory = `{"Localrec":["counter",{"Function":[[],[{"Local":[["n"],[{"Number":0}]]},{"Return":[{"Function":[[],[{"Set":[[{"Id":"n"}],[{"Add":[{"Id":"n"},{"Number":1}]}]]},{"Return":[{"Id":"n"}]}]]}]}]]}]}`

	vals := runChunk(t, `[`+factory+`,{"Local":[["c"],[{"Call":[{"Id":"counter"},[]]}]]},{"Return":[{"Call":[{"Id":"c"},[]]},{"Call":[{"Id":"c"},[]]},{"Call":[{"Id":"c"},[]]}]}]`)
	wantValues(t, vals, num(1), num(2), num(3))

	vals = runChunk(t, `[`+factory+`,{"Local":[["c1","c2"],[{"Call":[{"Id":"counter"},[]]},{"Call":[{"Id":"counter"},[]]}]]},{"Return":[{"Call":[{"Id":"c1"},[]]},{"Call":[{"Id":"c1"},[]]},{"Call":[{"Id":"c2"},[]]}]}]`)
	wantValues(t, vals, num(1), num(2), num(1))
}

func TestEvalSharedUpvalue(t *testing.T) {
	// get and set close over the same cell: a write through one is seen
	// through the other
	vals := runChunk(t, `[{"Local":[["x"],[{"Number":0}]]},{"Local":[["get"],[{"Function":[[],[{"Return":[{"Id":"x"}]}]]}]]},{"Local":[["set"],[{"Function":[["v"],[{"Set":[[{"Id":"x"}],[{"Id":"v"}]]}]]}]]},{"Call":[{"Id":"set"},[{"Number":42}]]},{"Return":[{"Call":[{"Id":"get"},[]]},{"Id":"x"}]}]`)
	wantValues(t, vals, num(42), num(42))
}

func TestEvalLoopCapture(t *testing.T) {
	// each iteration declares a fresh cell, so the closures hold 1, 2, 3
	vals := runChunk(t, `[{"Local":[["fs"],[{"Table":[]}]]},{"Fornum":["i",{"Number":1},{"Number":3},[{"Set":[[{"Index":[{"Id":"fs"},{"Id":"i"}]}],[{"Function":[[],[{"Return":[{"Id":"i"}]}]]}]]}]]},{"Return":[{"Call":[{"Index":[{"Id":"fs"},{"Number":1}]},[]]},{"Call":[{"Index":[{"Id":"fs"},{"Number":2}]},[]]},{"Call":[{"Index":[{"Id":"fs"},{"Number":3}]},[]]}]}]`)
	wantValues(t, vals, num(1), num(2), num(3))
}

func TestEvalMethodInvoke(t *testing.T) {
	vals := runChunk(t, `[{"Local":[["t"],[{"Table":[{"Pair":[{"String":"prefix"},{"String":"Hello "}]},{"Pair":[{"String":"greet"},{"Function":[["self","name"],[{"Return":[{"Concat":[{"Index":[{"Id":"self"},{"String":"prefix"}]},{"Id":"name"}]}]}]]}]}]}]]},{"Return":[{"Invoke":[{"Id":"t"},"greet",[{"String":"world"}]]}]}]`)
	wantValues(t, vals, str("Hello world"))
}

func TestEvalFunctionArgAdjustment(t *testing.T) {
	const f = `{"Localrec":["f",{"Function":[["a","b"],[{"Return":[{"Id":"a"},{"Id":"b"}]}]]}]}`

	t.Run("missing arguments read nil", func(t *testing.T) {
		vals := runChunk(t, `[`+f+`,{"Return":[{"Call":[{"Id":"f"},[{"Number":1}]]}]}]`)
		wantValues(t, vals, num(1), types.Nil)
	})

	t.Run("extra arguments drop", func(t *testing.T) {
		vals := runChunk(t, `[`+f+`,{"Return":[{"Call":[{"Id":"f"},[{"Number":1},{"Number":2},{"Number":3}]]}]}]`)
		wantValues(t, vals, num(1), num(2))
	})
}

func TestEvalGlobalFallthrough(t *testing.T) {
	// an unresolved name reads and writes the globals table
	vals := runChunk(t, `[{"Set":[[{"Id":"g"}],[{"Number":5}]]},{"Localrec":["f",{"Function":[[],[{"Return":[{"Id":"g"}]}]]}]},{"Return":[{"Call":[{"Id":"f"},[]]},{"Id":"missing"}]}]`)
	wantValues(t, vals, num(5), types.Nil)
}
