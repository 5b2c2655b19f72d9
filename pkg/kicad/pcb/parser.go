package pcb

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported file version (KiCad 5.0 = 20171130)
const MinSupportedVersion = 20171130

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// ParseString parses a board held in memory.
func ParseString(s string) (*Board, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	root := sexps[0]
	rootName, err := sexp.NodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if titleBlock, found := sexp.FindNode(root, "title_block"); found {
		board.Title, _ = sexp.ChildString(titleBlock, "title")
	}

	board.Nets, err = parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.NetClasses = parseNetClasses(root)

	// Copper items point into board.Nets, so it must not be appended to
	// from here on.
	netMap := NewNetMap(board.Nets)

	if board.Footprints, err = parseFootprints(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}
	if board.Segments, err = parseSegments(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse segments: %w", err)
	}
	if board.Vias, err = parseVias(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20171130) (host pcbnew 5.1.5) ...)
func parseHeader(root kicadsexp.Sexp) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 5.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := sexp.FindNode(root, "host"); found {
		if toolName, err := sexp.GetString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := sexp.FindNode(root, "generator"); found {
		if generatorName, err := sexp.GetString(genNode, 1); err == nil {
			gen = generatorName
		}
	}

	return ver, gen, nil
}

// parseNets extracts top-level net declarations: (net 1 GND) ...
func parseNets(root kicadsexp.Sexp) ([]Net, error) {
	netNodes := sexp.FindAllNodes(root, "net")
	nets := make([]Net, 0, len(netNodes))

	for _, netNode := range netNodes {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}

		// Net 0 often has an empty or missing name
		name, _ := sexp.GetString(netNode, 2)
		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}

// parseNetClasses reads (net_class Default "description" (clearance ..) (add_net GND) ...)
func parseNetClasses(root kicadsexp.Sexp) []NetClass {
	var classes []NetClass
	for _, node := range sexp.FindAllNodes(root, "net_class") {
		name, _ := sexp.GetString(node, 1)
		class := NetClass{Name: name}
		for _, add := range sexp.FindAllNodes(node, "add_net") {
			if netName, err := sexp.GetString(add, 1); err == nil {
				class.Nets = append(class.Nets, netName)
			}
		}
		classes = append(classes, class)
	}
	return classes
}

func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) ([]Footprint, error) {
	nodes := append(sexp.FindAllNodes(root, "module"), sexp.FindAllNodes(root, "footprint")...)
	footprints := make([]Footprint, 0, len(nodes))

	for i, node := range nodes {
		fp, err := parseFootprint(node, netMap)
		if err != nil {
			return nil, fmt.Errorf("footprint %d: %w", i, err)
		}
		footprints = append(footprints, *fp)
	}
	return footprints, nil
}

// parseFootprint reads (module NAME (layer F.Cu) (at X Y [A]) (fp_text reference K0 ...) (pad ...) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	name, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse name: %w", err)
	}

	fp := &Footprint{Name: name}
	fp.Layer, _ = sexp.ChildString(node, "layer")

	if fp.Position, err = sexp.ChildPosition(node, "at"); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	for _, text := range sexp.FindAllNodes(node, "fp_text") {
		kind, _ := sexp.GetString(text, 1)
		value, _ := sexp.GetString(text, 2)
		switch kind {
		case "reference":
			fp.Reference = value
		case "value":
			fp.Value = value
		}
	}
	// KiCad 8 moved reference and value into properties
	for _, prop := range sexp.FindAllNodes(node, "property") {
		key, _ := sexp.GetString(prop, 1)
		value, _ := sexp.GetString(prop, 2)
		switch key {
		case "Reference":
			fp.Reference = value
		case "Value":
			fp.Value = value
		}
	}

	for _, padNode := range sexp.FindAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", name, fp.Reference, err)
		}
		fp.Pads = append(fp.Pads, *pad)
	}

	return fp, nil
}

// parsePad reads (pad NUMBER TYPE SHAPE (at X Y [A]) ... [(net N NAME)])
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	pad := &Pad{}

	var err error
	if pad.Number, err = sexp.GetString(node, 1); err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	if pad.Type, err = sexp.GetString(node, 2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	if pad.Shape, err = sexp.GetString(node, 3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}
	if pad.Position, err = sexp.ChildPosition(node, "at"); err != nil {
		return nil, fmt.Errorf("pad %s: %w", pad.Number, err)
	}

	if pad.Net, err = netRef(node, netMap); err != nil {
		return nil, fmt.Errorf("pad %s: %w", pad.Number, err)
	}
	return pad, nil
}

// parseSegments reads (segment (start X Y) (end X Y) (width W) (layer L) (net N))
func parseSegments(root kicadsexp.Sexp, netMap *NetMap) ([]Segment, error) {
	nodes := sexp.FindAllNodes(root, "segment")
	segments := make([]Segment, 0, len(nodes))

	for i, node := range nodes {
		start, err := sexp.ChildPosition(node, "start")
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		end, err := sexp.ChildPosition(node, "end")
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		width, _ := sexp.ChildFloat(node, "width")
		layer, _ := sexp.ChildString(node, "layer")

		net, err := netRef(node, netMap)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}

		segments = append(segments, Segment{
			Start: start.Position,
			End:   end.Position,
			Width: width,
			Layer: layer,
			Net:   net,
		})
	}
	return segments, nil
}

// parseVias reads (via (at X Y) (size S) (drill D) (layers F.Cu B.Cu) (net N))
func parseVias(root kicadsexp.Sexp, netMap *NetMap) ([]Via, error) {
	nodes := sexp.FindAllNodes(root, "via")
	vias := make([]Via, 0, len(nodes))

	for i, node := range nodes {
		at, err := sexp.ChildPosition(node, "at")
		if err != nil {
			return nil, fmt.Errorf("via %d: %w", i, err)
		}
		size, _ := sexp.ChildFloat(node, "size")
		drill, _ := sexp.ChildFloat(node, "drill")

		net, err := netRef(node, netMap)
		if err != nil {
			return nil, fmt.Errorf("via %d: %w", i, err)
		}

		vias = append(vias, Via{
			Position: at.Position,
			Size:     size,
			Drill:    drill,
			Layers:   sexp.ChildStrings(node, "layers"),
			Net:      net,
		})
	}
	return vias, nil
}

// netRef resolves the (net N) child of a copper item. A missing node or
// net 0 means unconnected; an undeclared number is an error.
func netRef(node kicadsexp.Sexp, netMap *NetMap) (*Net, error) {
	netNode, found := sexp.FindNode(node, "net")
	if !found {
		return nil, nil
	}

	number, err := sexp.GetInt(netNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse net number: %w", err)
	}
	if number == 0 {
		return nil, nil
	}

	net, ok := netMap.GetByNumber(number)
	if !ok {
		return nil, fmt.Errorf("reference to undeclared net %d", number)
	}
	return net, nil
}
