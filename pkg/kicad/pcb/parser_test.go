package pcb

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp/kicadsexp"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantGen     string
		wantErr     bool
	}{
		{
			name:        "KiCad 5 with host",
			input:       "(kicad_pcb (version 20171130) (host pcbnew 5.1.5))",
			wantVersion: 20171130,
			wantGen:     "pcbnew",
		},
		{
			name:        "KiCad 6 with host",
			input:       "(kicad_pcb (version 20221018) (host pcbnew \"(6.0.10)\"))",
			wantVersion: 20221018,
			wantGen:     "pcbnew",
		},
		{
			name:        "KiCad 7 with generator",
			input:       "(kicad_pcb (version 20230314) (generator pcbnew))",
			wantVersion: 20230314,
			wantGen:     "pcbnew",
		},
		{
			name:    "missing version",
			input:   "(kicad_pcb (generator pcbnew))",
			wantErr: true,
		},
		{
			name:    "KiCad 4",
			input:   "(kicad_pcb (version 4))",
			wantErr: true,
		},
		{
			name:        "no generator",
			input:       "(kicad_pcb (version 20171130))",
			wantVersion: 20171130,
			wantGen:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sexps, err := kicadsexp.ParseString(tt.input)
			if err != nil {
				t.Fatalf("Failed to parse s-expression: %v", err)
			}

			version, gen, err := parseHeader(sexps[0])
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseHeader() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseHeader() unexpected error: %v", err)
			}

			if version != tt.wantVersion {
				t.Errorf("parseHeader() version = %d, want %d", version, tt.wantVersion)
			}
			if gen != tt.wantGen {
				t.Errorf("parseHeader() generator = %q, want %q", gen, tt.wantGen)
			}
		})
	}
}

const kicad5Board = `(kicad_pcb (version 20171130) (host pcbnew 5.1.5)
  (title_block (title "Test80") (date 2024-01-15))
  (net 0 "")
  (net 1 GND)
  (net 2 /Row_0)
  (net 3 /Col_0)
  (net 4 "Net-(D0-Pad2)")
  (net_class Default "This is the default net class."
    (clearance 0.2)
    (add_net /Col_0)
    (add_net /Row_0)
    (add_net GND)
    (add_net "Net-(D0-Pad2)")
  )
  (module Keyboard:MX-1.00U (layer F.Cu) (tedit 5A02FE24)
    (at -90.475 27.305)
    (fp_text reference K0 (at 0 3.175) (layer F.SilkS) hide)
    (fp_text value KEYSW (at 0 -7.9375) (layer F.Fab))
    (pad 1 thru_hole circle (at -3.81 -2.54) (size 2.25 2.25) (drill 1.47) (layers *.Cu *.Mask) (net 3 /Col_0))
    (pad 2 thru_hole circle (at 2.54 -5.08) (size 2.25 2.25) (drill 1.47) (layers *.Cu *.Mask) (net 4 "Net-(D0-Pad2)"))
  )
  (module Diode:D_SOD-123 (layer B.Cu)
    (at -96.825 36.195 90)
    (fp_text reference D0 (at 0 -2) (layer B.SilkS))
    (pad 1 smd rect (at -1.635 0 90) (size 0.91 1.22) (layers B.Cu B.Paste B.Mask) (net 2 /Row_0))
    (pad 2 smd rect (at 1.635 0 90) (size 0.91 1.22) (layers B.Cu B.Paste B.Mask) (net 4 "Net-(D0-Pad2)"))
    (pad 3 smd rect (at 0 0) (size 0.5 0.5) (layers B.Cu))
  )
  (segment (start -96.855 29.845) (end -96.855 35.075) (width 0.25) (layer B.Cu) (net 4))
  (via (at -90.475 25.275) (size 0.6) (drill 0.4) (layers F.Cu B.Cu) (net 3))
  (via (at -100.155 37.135) (size 0.6) (drill 0.4) (layers F.Cu B.Cu) (net 2))
)`

func TestParseKiCad5Board(t *testing.T) {
	board, err := ParseString(kicad5Board)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if board.Title != "Test80" {
		t.Errorf("Title = %q, want Test80", board.Title)
	}
	if len(board.Nets) != 5 {
		t.Fatalf("len(Nets) = %d, want 5", len(board.Nets))
	}
	if board.Nets[4].Name != "Net-(D0-Pad2)" {
		t.Errorf("Nets[4].Name = %q", board.Nets[4].Name)
	}

	if len(board.NetClasses) != 1 || len(board.NetClasses[0].Nets) != 4 {
		t.Errorf("NetClasses = %+v, want one class with 4 nets", board.NetClasses)
	}

	if len(board.Footprints) != 2 {
		t.Fatalf("len(Footprints) = %d, want 2", len(board.Footprints))
	}

	sw, ok := board.FindFootprint("K0")
	if !ok {
		t.Fatal("footprint K0 not found")
	}
	if sw.Name != "Keyboard:MX-1.00U" || sw.Value != "KEYSW" || sw.Layer != "F.Cu" {
		t.Errorf("K0 = %+v", sw)
	}
	if sw.Pads[0].Net == nil || sw.Pads[0].Net.Name != "/Col_0" {
		t.Errorf("K0 pad 1 net = %v, want /Col_0", sw.Pads[0].Net)
	}

	diode, _ := board.FindFootprint("D0")
	if diode.Position.Angle != 90 {
		t.Errorf("D0 angle = %v, want 90", diode.Position.Angle)
	}
	if diode.Pads[2].Net != nil {
		t.Errorf("D0 pad 3 should be unconnected, got %v", diode.Pads[2].Net)
	}

	if len(board.Segments) != 1 || board.Segments[0].Layer != "B.Cu" || board.Segments[0].Width != 0.25 {
		t.Errorf("Segments = %+v", board.Segments)
	}
	if len(board.Vias) != 2 || board.Vias[1].Net.Name != "/Row_0" {
		t.Errorf("Vias = %+v", board.Vias)
	}
	if got := strings.Join(board.Vias[0].Layers, ","); got != "F.Cu,B.Cu" {
		t.Errorf("via layers = %q", got)
	}
}

func TestUsage(t *testing.T) {
	board, err := ParseString(kicad5Board)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := map[string]NetUsage{
		"GND":           {Pads: 0, Vias: 0, Segments: 0},
		"/Row_0":        {Pads: 1, Vias: 1, Segments: 0},
		"/Col_0":        {Pads: 1, Vias: 1, Segments: 0},
		"Net-(D0-Pad2)": {Pads: 2, Vias: 0, Segments: 1},
	}

	usage := board.Usage()
	if len(usage) != len(want) {
		t.Fatalf("len(Usage()) = %d, want %d", len(usage), len(want))
	}
	for _, u := range usage {
		w, ok := want[u.Net.Name]
		if !ok {
			t.Errorf("unexpected net %q", u.Net.Name)
			continue
		}
		if u.Pads != w.Pads || u.Vias != w.Vias || u.Segments != w.Segments {
			t.Errorf("%s: got pads=%d vias=%d segments=%d, want %d/%d/%d",
				u.Net.Name, u.Pads, u.Vias, u.Segments, w.Pads, w.Vias, w.Segments)
		}
	}
}

func TestBounds(t *testing.T) {
	board, err := ParseString(kicad5Board)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	bb := board.Bounds()
	if bb.Min.X != -100.155 || bb.Max.X != -90.475 {
		t.Errorf("X bounds = [%v, %v]", bb.Min.X, bb.Max.X)
	}
	if bb.Min.Y != 25.275 || bb.Max.Y != 37.135 {
		t.Errorf("Y bounds = [%v, %v]", bb.Min.Y, bb.Max.Y)
	}
}

func TestParseKiCad8Footprint(t *testing.T) {
	input := `(kicad_pcb (version 20240108) (generator "pcbnew")
  (net 0 "") (net 1 "GND")
  (footprint "Keyboard:MX-1.00U" (layer "F.Cu") (at 10 20)
    (property "Reference" "K7" (at 0 0))
    (property "Value" "KEYSW" (at 0 0))
    (pad "1" thru_hole circle (at 0 0) (net 1 "GND"))))`

	board, err := ParseString(input)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	fp, ok := board.FindFootprint("K7")
	if !ok {
		t.Fatal("footprint K7 not found")
	}
	if fp.Pads[0].Net == nil || fp.Pads[0].Net.Name != "GND" {
		t.Errorf("pad net = %v, want GND", fp.Pads[0].Net)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a board", "(kicad_sch (version 20171130))"},
		{"unclosed", "(kicad_pcb (version 20171130)"},
		{"undeclared net", "(kicad_pcb (version 20171130) (via (at 0 0) (net 9)))"},
		{"module without position", "(kicad_pcb (version 20171130) (module X (layer F.Cu)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseString(tt.input); err == nil {
				t.Errorf("ParseString(%q) expected error", tt.input)
			}
		})
	}
}
