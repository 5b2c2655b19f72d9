// Package report produces assembly data for a generated board: a
// component placement list (CPL) and a bill of materials (BOM), written as
// CSV or as a single Excel workbook.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/project"
)

// Format selects the report file type.
type Format int

const (
	FormatNone Format = iota
	FormatCSV
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FormatNone, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return FormatNone, fmt.Errorf("report: unknown format %q (want none, csv or xlsx)", s)
}

// Placement is one CPL row. Coordinates are board millimetres.
type Placement struct {
	Designator string
	Comment    string
	Footprint  string
	X          float64
	Y          float64
	Rotation   float64 // Degrees counter-clockwise, in [0, 360)
	Layer      string  // Top or Bottom
}

// BOMEntry groups identical parts.
type BOMEntry struct {
	Comment     string
	Footprint   string
	Designators []string
}

// Quantity returns the number of parts in the entry.
func (e BOMEntry) Quantity() int {
	return len(e.Designators)
}

// Placements returns the switch and diode of every key, in key order.
func Placements(kb *keyboard.Keyboard, layout project.LayoutConfig) []Placement {
	var rows []Placement
	for _, k := range kb.Keys() {
		sw := layout.KeyOrigin(k.X, k.Y)
		d := layout.DiodeOrigin(k.X, k.Y)

		rows = append(rows,
			Placement{
				Designator: fmt.Sprintf("K%d", k.Number),
				Comment:    "KEYSW",
				Footprint:  project.SwitchFootprint(k.Width),
				X:          sw.X,
				Y:          sw.Y,
				Rotation:   normalize(-k.Rotation),
				Layer:      "Top",
			},
			Placement{
				Designator: fmt.Sprintf("D%d", k.Number),
				Comment:    "D",
				Footprint:  project.DiodeFootprint,
				X:          d.X,
				Y:          d.Y,
				Rotation:   90,
				Layer:      "Bottom",
			},
		)
	}
	return rows
}

// BOM groups switches by footprint, widest last, followed by one diode
// line.
func BOM(kb *keyboard.Keyboard) []BOMEntry {
	byFootprint := make(map[string]*BOMEntry)
	diodes := BOMEntry{Comment: "D", Footprint: project.DiodeFootprint}

	for _, k := range kb.Keys() {
		fp := project.SwitchFootprint(k.Width)
		entry, ok := byFootprint[fp]
		if !ok {
			entry = &BOMEntry{Comment: "KEYSW " + project.FootprintWidth(k.Width) + "U", Footprint: fp}
			byFootprint[fp] = entry
		}
		entry.Designators = append(entry.Designators, fmt.Sprintf("K%d", k.Number))
		diodes.Designators = append(diodes.Designators, fmt.Sprintf("D%d", k.Number))
	}

	entries := make([]BOMEntry, 0, len(byFootprint)+1)
	for _, entry := range byFootprint {
		entries = append(entries, *entry)
	}
	// Footprint names embed a fixed-width "N.NN" size, so they sort by width
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Footprint < entries[j].Footprint
	})

	if len(diodes.Designators) > 0 {
		entries = append(entries, diodes)
	}
	return entries
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	switch {
	case deg == 0:
		return 0 // also clears -0
	case deg < 0:
		return deg + 360
	}
	return deg
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
