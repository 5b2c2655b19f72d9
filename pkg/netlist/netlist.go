package netlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
)

// ErrUnresolvedNet means a key ended up without a net. This is a logic
// fault, not an input problem.
var ErrUnresolvedNet = errors.New("netlist: unresolved net")

// PowerNets lists the nets of the controller circuit, in table order.
var PowerNets = []string{
	"GND",
	"VCC",
	"Net-(C6-Pad1)",
	"Net-(C7-Pad1)",
	"Net-(C8-Pad1)",
	"Net-(J1-Pad4)",
	"Net-(J1-Pad3)",
	"Net-(J1-Pad2)",
	"Net-(R1-Pad1)",
	"Net-(R2-Pad1)",
	"Net-(R3-Pad1)",
	"Net-(R4-Pad2)",
	"Net-(U1-Pad42)",
	"/Reset",
}

// RowNetName returns the name of the net for matrix row r.
func RowNetName(r int) string {
	return fmt.Sprintf("/Row_%d", r)
}

// ColumnNetName returns the name of the net for matrix column c.
func ColumnNetName(c int) string {
	return fmt.Sprintf("/Col_%d", c)
}

// DiodeNetName returns the name of the net between switch and diode of
// key number n.
func DiodeNetName(n int) string {
	return fmt.Sprintf("Net-(D%d-Pad2)", n)
}

// Netlist is the ordered net table of one board. It is immutable after New.
type Netlist struct {
	MaxRows    int
	MaxColumns int

	names []string
	ids   map[string]int
}

// New builds the table for the given matrix bounds and number of keys.
func New(maxRows, maxColumns, keyCount int) *Netlist {
	n := len(PowerNets) + maxRows + maxColumns + keyCount
	nl := &Netlist{
		MaxRows:    maxRows,
		MaxColumns: maxColumns,
		names:      make([]string, 0, n),
		ids:        make(map[string]int, n),
	}

	for _, name := range PowerNets {
		nl.add(name)
	}
	for r := 0; r < maxRows; r++ {
		nl.add(RowNetName(r))
	}
	for c := 0; c < maxColumns; c++ {
		nl.add(ColumnNetName(c))
	}
	for k := 0; k < keyCount; k++ {
		nl.add(DiodeNetName(k))
	}

	return nl
}

func (nl *Netlist) add(name string) {
	nl.names = append(nl.names, name)
	nl.ids[name] = len(nl.names)
}

// ID returns the 1-based id of name, or 0 if the table has no such net.
func (nl *Netlist) ID(name string) int {
	return nl.ids[name]
}

// Name returns the net with the given id, or "" when id is out of range.
func (nl *Netlist) Name(id int) string {
	if id < 1 || id > len(nl.names) {
		return ""
	}
	return nl.names[id-1]
}

// Len returns the number of nets, not counting the implicit net 0.
func (nl *Netlist) Len() int {
	return len(nl.names)
}

// Names returns all net names in id order.
func (nl *Netlist) Names() []string {
	return append([]string(nil), nl.names...)
}

// RowNets returns the ids of the row nets in row order.
func (nl *Netlist) RowNets() []int {
	return nl.span(len(PowerNets), nl.MaxRows)
}

// ColumnNets returns the ids of the column nets in column order.
func (nl *Netlist) ColumnNets() []int {
	return nl.span(len(PowerNets)+nl.MaxRows, nl.MaxColumns)
}

func (nl *Netlist) span(offset, n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = offset + i + 1
	}
	return ids
}

// Resolve looks up the three nets of a key. Missing names yield id 0.
func (nl *Netlist) Resolve(k keyboard.Key) keyboard.NetIDs {
	return keyboard.NetIDs{
		Row:    nl.ID(RowNetName(k.Row())),
		Column: nl.ID(ColumnNetName(k.Column)),
		Diode:  nl.ID(DiodeNetName(k.Number)),
	}
}

// Assign builds the net table for kb and stores the net ids on every key,
// sealing the keyboard. The matrix must already be generated.
func Assign(kb *keyboard.Keyboard, maxRows, maxColumns int) (*Netlist, error) {
	if !kb.HasMatrix() || kb.Sealed() {
		return nil, fmt.Errorf("%w: nets need a generated, unsealed matrix", keyboard.ErrKeyboardState)
	}

	nl := New(maxRows, maxColumns, kb.Len())

	var unresolved []string
	for _, key := range kb.Keys() {
		if ids := nl.Resolve(key); !ids.Resolved() {
			unresolved = append(unresolved, fmt.Sprintf("%d", key.Number))
		}
	}
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("%w: keys %s", ErrUnresolvedNet, strings.Join(unresolved, ", "))
	}

	if err := kb.AnnotateNets(nl.Resolve); err != nil {
		return nil, err
	}
	return nl, nil
}
