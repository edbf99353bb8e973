package types

// Cell is a shared mutable box holding one variable. Closures capture cells
// by reference, so every function observing a variable observes the same
// storage; assignment through any capturer is visible to all of them.
type Cell struct {
	V Value
}

// NewCell allocates a cell holding v
func NewCell(v Value) *Cell { return &Cell{V: v} }
