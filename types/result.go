package types

import "fmt"

// ControlFlow represents the control flow state of evaluation
type ControlFlow int

const (
	FlowNormal ControlFlow = iota // normal execution
	FlowReturn                    // return statement unwinding to the function boundary
	FlowBreak                     // break statement unwinding to the loop boundary
	FlowError                     // fault in flight
)

// Result represents the outcome of evaluating an expression or statement.
// It unifies produced values, control flow and faults in a single channel:
// there is no separate error path inside the interpreter.
type Result struct {
	Vals  []Value     // values produced (FlowNormal and FlowReturn)
	Flow  ControlFlow
	Err   Value       // the error object (FlowError)
	Trace []string    // call stack captured where the fault was raised
}

// Ok creates a normal result carrying one value
func Ok(v Value) Result {
	return Result{Flow: FlowNormal, Vals: []Value{v}}
}

// OkMulti creates a normal result carrying a value list
func OkMulti(vals []Value) Result {
	return Result{Flow: FlowNormal, Vals: vals}
}

// None creates a normal result carrying no values
func None() Result {
	return Result{Flow: FlowNormal}
}

// Return creates a result for a return statement
func Return(vals []Value) Result {
	return Result{Flow: FlowReturn, Vals: vals}
}

// Break creates a result for a break statement
func Break() Result {
	return Result{Flow: FlowBreak}
}

// Throw creates a fault carrying an arbitrary error value
func Throw(err Value) Result {
	return Result{Flow: FlowError, Err: err}
}

// Throwf creates a fault carrying a formatted message string
func Throwf(format string, args ...any) Result {
	return Throw(NewStr(fmt.Sprintf(format, args...)))
}

// First returns the first value, or nil when none were produced
func (r Result) First() Value {
	if len(r.Vals) > 0 {
		return r.Vals[0]
	}
	return Nil
}

// IsNormal returns true for plain completion
func (r Result) IsNormal() bool { return r.Flow == FlowNormal }

// IsError returns true when a fault is in flight
func (r Result) IsError() bool { return r.Flow == FlowError }
