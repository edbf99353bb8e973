package types

import (
	"errors"
	"fmt"
	"math"
)

// Invalid key faults, worded the way scripts observe them
var (
	ErrNilIndex    = errors.New("table index is nil")
	ErrNaNIndex    = errors.New("table index is NaN")
	ErrInvalidNext = errors.New("invalid key to 'next'")
)

// Table is the aggregate value: a dense array part for the integer prefix
// 1..n plus an insertion-ordered hash part for everything else. The
// insertion order makes Next stable across a traversal without extra
// bookkeeping. Cleared hash entries stay as tombstones so a traversal can
// continue from a key that was just removed.
type Table struct {
	arr     []Value
	hash    map[Value]int // key -> index into entries, kept across clears
	entries []tableEntry
	dead    int // tombstone count
	meta    *Table
}

type tableEntry struct {
	key Value
	val Value // Nil marks a cleared entry
}

// NewTable allocates an empty table
func NewTable() *Table {
	return &Table{}
}

func (t *Table) Type() TypeCode { return TypeTable }
func (t *Table) String() string { return fmt.Sprintf("table: %p", t) }
func (t *Table) Truthy() bool   { return true }

func (t *Table) Equal(o Value) bool {
	ot, ok := o.(*Table)
	return ok && ot == t
}

// Metatable returns the attached metatable, or nil
func (t *Table) Metatable() *Table { return t.meta }

// SetMetatable attaches or clears the metatable
func (t *Table) SetMetatable(m *Table) { t.meta = m }

// arrIndex reports whether a key addresses the array part range, returning
// the 1-based index. Only exact positive integers qualify.
func (t *Table) arrIndex(key Value) (int, bool) {
	n, ok := key.(NumberValue)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if f != math.Trunc(f) || f < 1 || f > float64(math.MaxInt32) {
		return 0, false
	}
	return int(f), true
}

// RawGet reads a key without consulting metatables. Absent keys, nil and
// NaN all read as nil.
func (t *Table) RawGet(key Value) Value {
	if key == nil || IsNil(key) {
		return Nil
	}
	if i, ok := t.arrIndex(key); ok && i <= len(t.arr) {
		return t.arr[i-1]
	}
	if idx, ok := t.hash[key]; ok {
		return t.entries[idx].val
	}
	return Nil
}

// RawSet writes a key without consulting metatables. Writing nil clears the
// key. Nil and NaN keys are rejected.
func (t *Table) RawSet(key, val Value) error {
	if key == nil || IsNil(key) {
		return ErrNilIndex
	}
	if n, ok := key.(NumberValue); ok && math.IsNaN(float64(n)) {
		return ErrNaNIndex
	}
	if i, ok := t.arrIndex(key); ok {
		if i <= len(t.arr) {
			t.arr[i-1] = val
			return nil
		}
		if i == len(t.arr)+1 && !IsNil(val) {
			t.arr = append(t.arr, val)
			t.migrate()
			return nil
		}
	}
	t.hashSet(key, val)
	return nil
}

// RawGetInt reads a positive integer key
func (t *Table) RawGetInt(i int) Value {
	return t.RawGet(NumberValue(float64(i)))
}

// RawSetInt writes a positive integer key
func (t *Table) RawSetInt(i int, val Value) {
	// integer keys can never be nil or NaN
	_ = t.RawSet(NumberValue(float64(i)), val)
}

// GetField reads a string key
func (t *Table) GetField(name string) Value {
	return t.RawGet(StrValue(name))
}

// SetField writes a string key; used when building library tables
func (t *Table) SetField(name string, val Value) {
	// string keys can never be nil or NaN
	_ = t.RawSet(StrValue(name), val)
}

// migrate moves hash keys that became contiguous with the array part into
// it, so the integer prefix always lives in the array.
func (t *Table) migrate() {
	for {
		k := NumberValue(float64(len(t.arr) + 1))
		idx, ok := t.hash[k]
		if !ok || IsNil(t.entries[idx].val) {
			return
		}
		t.arr = append(t.arr, t.entries[idx].val)
		t.entries[idx].val = Nil
		t.dead++
	}
}

func (t *Table) hashSet(key, val Value) {
	if idx, ok := t.hash[key]; ok {
		was := t.entries[idx].val
		t.entries[idx].val = val
		switch {
		case IsNil(val) && !IsNil(was):
			t.dead++
		case !IsNil(val) && IsNil(was):
			t.dead--
		}
		return
	}
	if IsNil(val) {
		return
	}
	if t.dead > 8 && t.dead > len(t.entries)/2 {
		t.compact()
	}
	if t.hash == nil {
		t.hash = make(map[Value]int)
	}
	t.hash[key] = len(t.entries)
	t.entries = append(t.entries, tableEntry{key: key, val: val})
}

// compact drops tombstones. Traversal positions move, which is only
// observable when new keys were added mid-traversal, a use the iteration
// contract already leaves undefined.
func (t *Table) compact() {
	live := make([]tableEntry, 0, len(t.entries)-t.dead)
	hash := make(map[Value]int, len(t.entries)-t.dead)
	for _, e := range t.entries {
		if !IsNil(e.val) {
			hash[e.key] = len(live)
			live = append(live, e)
		}
	}
	t.entries = live
	t.hash = hash
	t.dead = 0
}

// Len returns a border: an n where t[n] is non-nil and t[n+1] is nil, or 0
// for an empty sequence. With a nil in the array tail it binary-searches,
// so any border may be reported for tables with holes.
func (t *Table) Len() int {
	j := len(t.arr)
	if j > 0 && IsNil(t.arr[j-1]) {
		i := 0
		for j-i > 1 {
			m := (i + j) / 2
			if IsNil(t.arr[m-1]) {
				j = m
			} else {
				i = m
			}
		}
		return i
	}
	return j
}

// Next supports stateless traversal: a nil key starts, and each live key
// yields its successor. The terminal result is a nil key. Keys cleared
// mid-traversal keep their position; keys never present are an error.
func (t *Table) Next(key Value) (Value, Value, error) {
	start := 0
	if key != nil && !IsNil(key) {
		if i, ok := t.arrIndex(key); ok && i <= len(t.arr) {
			start = i
		} else {
			idx, ok := t.hash[key]
			if !ok {
				return nil, nil, ErrInvalidNext
			}
			return t.nextEntry(idx + 1)
		}
	}
	for i := start; i < len(t.arr); i++ {
		if !IsNil(t.arr[i]) {
			return NumberValue(float64(i + 1)), t.arr[i], nil
		}
	}
	return t.nextEntry(0)
}

func (t *Table) nextEntry(from int) (Value, Value, error) {
	for i := from; i < len(t.entries); i++ {
		if !IsNil(t.entries[i].val) {
			return t.entries[i].key, t.entries[i].val, nil
		}
	}
	return Nil, Nil, nil
}
