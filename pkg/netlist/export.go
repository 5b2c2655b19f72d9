package netlist

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp/kicadsexp"
)

// Net is one entry of the exported table.
type Net struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// KeyNets is the exported assignment of one key.
type KeyNets struct {
	Number int    `json:"number"`
	Legend string `json:"legend,omitempty"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	RowNet int    `json:"row_net"`
	ColNet int    `json:"column_net"`
	Diode  int    `json:"diode_net"`
}

// Nets returns the table as id/name pairs.
func (nl *Netlist) Nets() []Net {
	nets := make([]Net, len(nl.names))
	for i, name := range nl.names {
		nets[i] = Net{ID: i + 1, Name: name}
	}
	return nets
}

// ExportJSON exports the net table and, when kb is sealed, the per-key
// assignments.
func (nl *Netlist) ExportJSON(kb *keyboard.Keyboard) ([]byte, error) {
	output := struct {
		Version    string    `json:"version"`
		Keyboard   string    `json:"keyboard,omitempty"`
		MaxRows    int       `json:"max_rows"`
		MaxColumns int       `json:"max_columns"`
		NetCount   int       `json:"net_count"`
		Nets       []Net     `json:"nets"`
		Keys       []KeyNets `json:"keys,omitempty"`
	}{
		Version:    "1.0",
		MaxRows:    nl.MaxRows,
		MaxColumns: nl.MaxColumns,
		NetCount:   nl.Len(),
		Nets:       nl.Nets(),
	}

	if kb != nil {
		if !kb.Sealed() {
			return nil, fmt.Errorf("%w: keyboard has no nets assigned", keyboard.ErrKeyboardState)
		}
		output.Keyboard = kb.Name
		for _, k := range kb.Keys() {
			output.Keys = append(output.Keys, KeyNets{
				Number: k.Number,
				Legend: k.Legend,
				Row:    k.Row(),
				Column: k.Column,
				RowNet: k.RowNet,
				ColNet: k.ColumnNet,
				Diode:  k.DiodeNet,
			})
		}
	}

	return json.MarshalIndent(output, "", "  ")
}

// Footprints used by the matrix parts.
const (
	SwitchFootprintPrefix = "Keyboard:MX-"
	DiodeFootprint        = "Diode:D_SOD-123"
)

// ExportKiCad writes a KiCad netlist (format D) with one switch and one
// diode per key. It can be imported into pcbnew to update an existing
// board. now stamps the design date.
func (nl *Netlist) ExportKiCad(kb *keyboard.Keyboard, source string, now time.Time, footprint func(width float64) string) (string, error) {
	if !kb.Sealed() {
		return "", fmt.Errorf("%w: keyboard has no nets assigned", keyboard.ErrKeyboardState)
	}

	type node struct {
		ref string
		pin int
	}
	nodes := make(map[int][]node)

	var b strings.Builder
	b.WriteString("(export (version D)\n")
	b.WriteString("  (design\n")
	fmt.Fprintf(&b, "    (source %s)\n", kicadsexp.Quote(source))
	fmt.Fprintf(&b, "    (date %s)\n", kicadsexp.Quote(now.Format("Mon 02 Jan 2006 03:04:05 PM MST")))
	b.WriteString("    (tool klepcbgen))\n")
	b.WriteString("  (components")

	for _, k := range kb.Keys() {
		sw := fmt.Sprintf("K%d", k.Number)
		d := fmt.Sprintf("D%d", k.Number)

		fmt.Fprintf(&b, "\n    (comp (ref %s)\n      (value KEYSW)\n      (footprint %s))", sw, kicadsexp.Quote(footprint(k.Width)))
		fmt.Fprintf(&b, "\n    (comp (ref %s)\n      (value D)\n      (footprint %s))", d, DiodeFootprint)

		nodes[k.ColumnNet] = append(nodes[k.ColumnNet], node{sw, 1})
		nodes[k.DiodeNet] = append(nodes[k.DiodeNet], node{sw, 2}, node{d, 2})
		nodes[k.RowNet] = append(nodes[k.RowNet], node{d, 1})
	}
	b.WriteString(")\n")

	b.WriteString("  (nets")
	for _, net := range nl.Nets() {
		fmt.Fprintf(&b, "\n    (net (code %d) (name %s)", net.ID, kicadsexp.Quote(net.Name))
		for _, n := range nodes[net.ID] {
			fmt.Fprintf(&b, "\n      (node (ref %s) (pin %d))", n.ref, n.pin)
		}
		b.WriteString(")")
	}
	b.WriteString("))\n")

	return b.String(), nil
}
