package keyboard

import (
	"fmt"
	"sort"
)

type state int

const (
	stateIngesting state = iota // keys may be appended
	stateMatrix                 // rows and columns computed
	stateSealed                 // net ids assigned, read-only
)

// Group is one row or one column of the matrix.
type Group struct {
	Index int   // Row or column index
	Keys  []int // Indices into Keyboard.Keys, in ingestion order
}

// Keyboard represents an entire keyboard layout with all the keys
// positioned and grouped in rows and columns.
type Keyboard struct {
	Name   string // From the layout metadata block
	Author string // From the layout metadata block

	keys    []Key
	rows    []Group
	columns []Group
	state   state
}

// New creates an empty keyboard ready for ingestion.
func New() *Keyboard {
	return &Keyboard{}
}

// Append adds a key during ingestion. The key's Number is set to its
// position and a zero size defaults to 1x1.
func (kb *Keyboard) Append(k Key) error {
	if kb.state != stateIngesting {
		return fmt.Errorf("%w: cannot append key after matrix generation", ErrKeyboardState)
	}

	k.Number = len(kb.keys)
	if k.Width == 0 {
		k.Width = 1
	}
	if k.Height == 0 {
		k.Height = 1
	}
	kb.keys = append(kb.keys, k)
	return nil
}

// Len returns the number of keys.
func (kb *Keyboard) Len() int {
	return len(kb.keys)
}

// Key returns a copy of the key at index i.
func (kb *Keyboard) Key(i int) Key {
	return kb.keys[i]
}

// Keys returns a copy of all keys in ingestion order.
func (kb *Keyboard) Keys() []Key {
	keys := make([]Key, len(kb.keys))
	copy(keys, kb.keys)
	return keys
}

// Select returns copies of the keys at the given indices.
func (kb *Keyboard) Select(indices []int) []Key {
	keys := make([]Key, len(indices))
	for i, idx := range indices {
		keys[i] = kb.keys[idx]
	}
	return keys
}

// Rows returns the row groups, ordered by row index. Empty until
// GenerateMatrix succeeds.
func (kb *Keyboard) Rows() []Group {
	return append([]Group(nil), kb.rows...)
}

// Columns returns the column groups, ordered by column index. Empty until
// GenerateMatrix succeeds.
func (kb *Keyboard) Columns() []Group {
	return append([]Group(nil), kb.columns...)
}

// HasMatrix reports whether GenerateMatrix has run.
func (kb *Keyboard) HasMatrix() bool {
	return kb.state >= stateMatrix
}

// Sealed reports whether net ids have been assigned.
func (kb *Keyboard) Sealed() bool {
	return kb.state == stateSealed
}

// GenerateMatrix groups keys into rows and assigns every key a column.
// It runs once; on error the keyboard is left untouched.
func (kb *Keyboard) GenerateMatrix(cfg MatrixConfig) error {
	if kb.state != stateIngesting {
		return fmt.Errorf("%w: matrix already generated", ErrKeyboardState)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rows, err := PartitionRows(kb.keys, cfg.MaxRows)
	if err != nil {
		return err
	}

	columns, err := inferColumns(kb.keys, rows, cfg)
	if err != nil {
		return err
	}

	for i := range kb.keys {
		kb.keys[i].Column = columns[i]
	}
	kb.rows = rows
	kb.columns = groupBy(len(kb.keys), func(i int) int { return columns[i] })
	kb.state = stateMatrix
	return nil
}

// AnnotateNets stores the net ids returned by fn for every key and seals
// the keyboard. It must run after GenerateMatrix.
func (kb *Keyboard) AnnotateNets(fn func(Key) NetIDs) error {
	if kb.state != stateMatrix {
		return fmt.Errorf("%w: nets need a generated, unsealed matrix", ErrKeyboardState)
	}

	for i := range kb.keys {
		ids := fn(kb.keys[i])
		kb.keys[i].RowNet = ids.Row
		kb.keys[i].ColumnNet = ids.Column
		kb.keys[i].DiodeNet = ids.Diode
	}
	kb.state = stateSealed
	return nil
}

// groupBy partitions indices 0..n-1 by the value of index, keeping
// ingestion order inside each group and ordering groups by value.
func groupBy(n int, index func(i int) int) []Group {
	byIndex := make(map[int][]int)
	for i := 0; i < n; i++ {
		v := index(i)
		byIndex[v] = append(byIndex[v], i)
	}

	groups := make([]Group, 0, len(byIndex))
	for v, keys := range byIndex {
		groups = append(groups, Group{Index: v, Keys: keys})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Index < groups[j].Index
	})
	return groups
}
