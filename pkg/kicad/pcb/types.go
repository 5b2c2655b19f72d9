// Package pcb reads the parts of a KiCad board file that carry
// connectivity: nets, footprints with their pads, track segments and vias.
// Both the KiCad 5 (module) and KiCad 6+ (footprint) spellings are read.
package pcb

import (
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp"
)

type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type BoundingBox = sexp.BoundingBox

// Board represents a parsed KiCad PCB
type Board struct {
	Version   int    // File format version
	Generator string // Generator info (e.g., "pcbnew")
	Title     string // Title block title, if any

	Nets       []Net       // Net declarations in file order
	NetClasses []NetClass  // Net classes and their members
	Footprints []Footprint // Modules (KiCad 5) or footprints (KiCad 6+)
	Segments   []Segment   // Track segments
	Vias       []Via       // Vias
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// NetClass is a (net_class ...) block.
type NetClass struct {
	Name string
	Nets []string // Names from add_net
}

// Footprint represents a placed component
type Footprint struct {
	Name      string        // Library:footprint
	Layer     string        // F.Cu or B.Cu
	Position  PositionAngle // Position and rotation
	Reference string        // Reference designator (e.g., "K0")
	Value     string        // Component value
	Pads      []Pad
}

// Pad represents a footprint pad. Position is relative to the footprint.
type Pad struct {
	Number   string
	Type     string // thru_hole, smd, ...
	Shape    string // circle, rect, ...
	Position PositionAngle
	Net      *Net // nil when the pad is unconnected
}

// Segment represents a copper track segment
type Segment struct {
	Start Position
	End   Position
	Width float64
	Layer string
	Net   *Net
}

// Via represents a via
type Via struct {
	Position Position
	Size     float64
	Drill    float64
	Layers   []string
	Net      *Net
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}

	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}

	return nm
}

// GetByName retrieves a net by its name (e.g., "GND", "/Row_0")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// NetUsage counts the copper attached to one net.
type NetUsage struct {
	Net      Net
	Pads     int
	Vias     int
	Segments int
}

// Usage returns one entry per declared net, in declaration order, skipping
// net 0.
func (b *Board) Usage() []NetUsage {
	index := make(map[int]int, len(b.Nets))
	var usage []NetUsage
	for _, net := range b.Nets {
		if net.Number == 0 {
			continue
		}
		index[net.Number] = len(usage)
		usage = append(usage, NetUsage{Net: net})
	}

	count := func(net *Net, field func(*NetUsage)) {
		if net == nil {
			return
		}
		if i, ok := index[net.Number]; ok {
			field(&usage[i])
		}
	}

	for _, fp := range b.Footprints {
		for _, pad := range fp.Pads {
			count(pad.Net, func(u *NetUsage) { u.Pads++ })
		}
	}
	for _, via := range b.Vias {
		count(via.Net, func(u *NetUsage) { u.Vias++ })
	}
	for _, seg := range b.Segments {
		count(seg.Net, func(u *NetUsage) { u.Segments++ })
	}
	return usage
}

// FindFootprint returns the footprint with the given reference.
func (b *Board) FindFootprint(reference string) (*Footprint, bool) {
	for i := range b.Footprints {
		if b.Footprints[i].Reference == reference {
			return &b.Footprints[i], true
		}
	}
	return nil, false
}

// Bounds returns the box around all footprint origins, vias and segment
// end points.
func (b *Board) Bounds() BoundingBox {
	bb := sexp.NewBoundingBox()
	for _, fp := range b.Footprints {
		bb.Expand(fp.Position.Position)
	}
	for _, via := range b.Vias {
		bb.Expand(via.Position)
	}
	for _, seg := range b.Segments {
		bb.Expand(seg.Start)
		bb.Expand(seg.End)
	}
	return bb
}
