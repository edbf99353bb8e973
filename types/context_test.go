package types

import (
	"context"
	"testing"
)

func TestTracebackOrder(t *testing.T) {
	ctx := NewContext()
	ctx.EnterCall("outer")
	ctx.EnterCall("middle")
	ctx.EnterCall("inner")

	tb := ctx.Traceback()
	want := []string{"inner", "middle", "outer"}
	if len(tb) != len(want) {
		t.Fatalf("Traceback() = %v, want %v", tb, want)
	}
	for i := range want {
		if tb[i] != want[i] {
			t.Errorf("Traceback()[%d] = %q, want %q", i, tb[i], want[i])
		}
	}

	ctx.LeaveCall()
	if tb := ctx.Traceback(); len(tb) != 2 || tb[0] != "middle" {
		t.Errorf("after LeaveCall Traceback() = %v", tb)
	}
}

func TestForCoroutine(t *testing.T) {
	parent := NewContext()
	parent.MaxDepth = 50
	parent.StepLimit = 1000
	parent.Globals = NewTable()
	parent.EnterCall("main")

	co := NewCoroutine(Nil)
	child := parent.ForCoroutine(co)

	if child.MaxDepth != 50 || child.StepLimit != 1000 {
		t.Errorf("budgets not inherited: depth %d steps %d", child.MaxDepth, child.StepLimit)
	}
	if child.Globals != parent.Globals {
		t.Error("globals table must be shared")
	}
	if child.Coro != co {
		t.Error("derived context must carry its coroutine")
	}
	if child.Depth() != 0 {
		t.Errorf("derived context must start at depth 0, got %d", child.Depth())
	}
	if len(child.Traceback()) != 0 {
		t.Errorf("derived context must start with an empty stack, got %v", child.Traceback())
	}
}

func TestCancelled(t *testing.T) {
	ctx := NewContext()
	if err := ctx.Cancelled(); err != nil {
		t.Errorf("fresh context reported cancelled: %v", err)
	}

	goCtx, cancel := context.WithCancel(context.Background())
	ctx.Ctx = goCtx
	if err := ctx.Cancelled(); err != nil {
		t.Errorf("uncancelled context reported cancelled: %v", err)
	}
	cancel()
	if err := ctx.Cancelled(); err == nil {
		t.Error("expected a cancellation error after cancel")
	}
}

func TestConsumeStepUnlimited(t *testing.T) {
	ctx := NewContext()
	// zero limit never exhausts
	for i := 0; i < 10000; i++ {
		if !ctx.ConsumeStep() {
			t.Fatalf("unlimited budget exhausted at step %d", i)
		}
	}
}
