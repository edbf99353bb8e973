package types

import (
	"fmt"

	"luax/ast"
)

// NativeFunc is the signature of a host-implemented function. Natives
// report faults by returning Throw results, never by panicking.
type NativeFunc func(ctx *Context, args []Value) Result

// Native is a function value implemented by the host
type Native struct {
	Name string
	Fn   NativeFunc
}

// NewNative wraps a host function
func NewNative(name string, fn NativeFunc) *Native {
	return &Native{Name: name, Fn: fn}
}

func (n *Native) Type() TypeCode { return TypeFunction }
func (n *Native) String() string { return fmt.Sprintf("function: %p", n) }
func (n *Native) Truthy() bool   { return true }

func (n *Native) Equal(o Value) bool {
	on, ok := o.(*Native)
	return ok && on == n
}

// Closure is a function value: a function literal plus the cells it
// captured at creation. Name is a debug label from the declaration site
// and may be empty.
type Closure struct {
	Proto  *ast.FunctionExpr
	Upvals []*Cell
	Name   string
}

func (c *Closure) Type() TypeCode { return TypeFunction }
func (c *Closure) String() string { return fmt.Sprintf("function: %p", c) }
func (c *Closure) Truthy() bool   { return true }

func (c *Closure) Equal(o Value) bool {
	oc, ok := o.(*Closure)
	return ok && oc == c
}
