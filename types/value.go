package types

import "fmt"

// TypeCode identifies a value's kind
type TypeCode int

const (
	TypeNil TypeCode = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeTable
	TypeFunction
	TypeUserdata
	TypeThread
)

var typeNames = [...]string{
	TypeNil:      "nil",
	TypeBoolean:  "boolean",
	TypeNumber:   "number",
	TypeString:   "string",
	TypeTable:    "table",
	TypeFunction: "function",
	TypeUserdata: "userdata",
	TypeThread:   "thread",
}

// String returns the name reported by type() and used in fault messages
func (t TypeCode) String() string { return typeNames[t] }

// Value is the interface implemented by every runtime value. All
// implementations are comparable Go types, so values can key maps directly;
// reference kinds are pointers and compare by identity.
type Value interface {
	Type() TypeCode
	String() string    // display form, never consults metamethods
	Truthy() bool      // nil and false are falsy, everything else truthy
	Equal(Value) bool  // raw equality, never consults metamethods
}

// TypeName returns the kind name of a value
func TypeName(v Value) string { return v.Type().String() }

// NilValue is the nil value
type NilValue struct{}

// Nil is the canonical nil
var Nil Value = NilValue{}

func (NilValue) Type() TypeCode     { return TypeNil }
func (NilValue) String() string     { return "nil" }
func (NilValue) Truthy() bool       { return false }
func (NilValue) Equal(o Value) bool { return IsNil(o) }

// IsNil reports whether a value is nil
func IsNil(v Value) bool {
	_, ok := v.(NilValue)
	return ok
}

// BoolValue is a boolean value
type BoolValue bool

// True and False are the two boolean values
var (
	True  Value = BoolValue(true)
	False Value = BoolValue(false)
)

// NewBool wraps a Go bool
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func (b BoolValue) Type() TypeCode { return TypeBoolean }

func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (b BoolValue) Truthy() bool { return bool(b) }

func (b BoolValue) Equal(o Value) bool {
	ob, ok := o.(BoolValue)
	return ok && b == ob
}

// NumberValue is the sole numeric kind, an IEEE 754 double
type NumberValue float64

// NewNumber wraps a float64
func NewNumber(f float64) NumberValue { return NumberValue(f) }

func (n NumberValue) Type() TypeCode { return TypeNumber }
func (n NumberValue) String() string { return NumberToString(float64(n)) }
func (n NumberValue) Truthy() bool   { return true }

// Equal follows IEEE semantics: NaN is not equal to itself, -0 equals 0
func (n NumberValue) Equal(o Value) bool {
	on, ok := o.(NumberValue)
	return ok && n == on
}

// StrValue is an immutable byte string
type StrValue string

// NewStr wraps a Go string
func NewStr(s string) StrValue { return StrValue(s) }

func (s StrValue) Type() TypeCode { return TypeString }
func (s StrValue) String() string { return string(s) }
func (s StrValue) Truthy() bool   { return true }

func (s StrValue) Equal(o Value) bool {
	os, ok := o.(StrValue)
	return ok && s == os
}

// Userdata wraps an opaque host payload with an optional metatable
type Userdata struct {
	Data any
	Meta *Table
}

// NewUserdata wraps a host payload
func NewUserdata(data any) *Userdata { return &Userdata{Data: data} }

func (u *Userdata) Type() TypeCode { return TypeUserdata }
func (u *Userdata) String() string { return fmt.Sprintf("userdata: %p", u) }
func (u *Userdata) Truthy() bool   { return true }

func (u *Userdata) Equal(o Value) bool {
	ou, ok := o.(*Userdata)
	return ok && ou == u
}
