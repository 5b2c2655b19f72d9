package project

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/netlist"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"mm":    mm,
	"q":     kicadsexp.Quote,
	"sq":    schQuote,
	"neg":   func(v float64) float64 { return -v },
	"add":   func(a, b int) int { return a + b },
	"stamp": func(n, part int) string { return fmt.Sprintf("%08X", 0x5C000000+n*4+part) },
}).ParseFS(templateFS, "templates/*.tmpl"))

// Options configures a Generator.
type Options struct {
	Layout    LayoutConfig
	Schematic SchematicConfig

	Version string // Tool version for the title block comment
	Comment string // Overrides the default title block comment
	Source  string // Input file name, recorded in the netlist

	Now    func() time.Time // Clock for date stamps (default: time.Now)
	Logger *slog.Logger     // default: slog.Default()
}

// DefaultOptions returns the stock placement.
func DefaultOptions() Options {
	return Options{
		Layout:    DefaultLayoutConfig(),
		Schematic: DefaultSchematicConfig(),
		Version:   "dev",
	}
}

// Generator renders the project files of one keyboard.
type Generator struct {
	kb   *keyboard.Keyboard
	nets *netlist.Netlist
	opts Options
}

// Output lists the files written by Write.
type Output struct {
	Dir       string
	Schematic string
	Layout    string
	Project   string
	Netlist   string
}

// New creates a generator. The keyboard must have its nets assigned from nl.
func New(kb *keyboard.Keyboard, nl *netlist.Netlist, opts Options) (*Generator, error) {
	if !kb.Sealed() {
		return nil, fmt.Errorf("%w: project needs assigned nets", keyboard.ErrKeyboardState)
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Schematic.Validate(); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Comment == "" {
		opts.Comment = "Generated by klepcbgen v" + opts.Version
	}

	return &Generator{kb: kb, nets: nl, opts: opts}, nil
}

// Write creates the directory outname and writes
// outname/<base>.{sch,kicad_pcb,pro,net} into it, where base is the last
// element of outname.
func (g *Generator) Write(outname string) (*Output, error) {
	dir := filepath.Clean(outname)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(dir, filepath.Base(dir))
	out := &Output{
		Dir:       dir,
		Schematic: base + ".sch",
		Layout:    base + ".kicad_pcb",
		Project:   base + ".pro",
		Netlist:   base + ".net",
	}

	files := []struct {
		path   string
		render func(io.Writer) error
	}{
		{out.Schematic, g.RenderSchematic},
		{out.Layout, g.RenderLayout},
		{out.Project, g.RenderProject},
		{out.Netlist, g.RenderNetlist},
	}
	for _, f := range files {
		if err := writeFile(f.path, f.render); err != nil {
			return nil, err
		}
		g.opts.Logger.Debug("Wrote file.", "path", f.path)
	}

	return out, nil
}

// writeFile renders into memory first so a template error leaves no
// truncated file behind.
func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RenderSchematic writes the legacy EESchema file.
func (g *Generator) RenderSchematic(w io.Writer) error {
	return templates.ExecuteTemplate(w, "schematic.sch.tmpl", g.view())
}

// RenderLayout writes the pcbnew board file.
func (g *Generator) RenderLayout(w io.Writer) error {
	return templates.ExecuteTemplate(w, "layout.kicad_pcb.tmpl", g.view())
}

// RenderProject writes the .pro file.
func (g *Generator) RenderProject(w io.Writer) error {
	return templates.ExecuteTemplate(w, "project.pro.tmpl", g.view())
}

// RenderNetlist writes a KiCad netlist matching the board.
func (g *Generator) RenderNetlist(w io.Writer) error {
	out, err := g.nets.ExportKiCad(g.kb, g.opts.Source, g.opts.Now(), SwitchFootprint)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type netRef struct {
	ID   int
	Name string
}

// Label is the schematic label that produces this net on the root sheet.
func (n netRef) Label() string {
	return strings.TrimPrefix(n.Name, "/")
}

type via struct {
	At  sexp.Position
	Net netRef
}

type segment struct {
	Start, End sexp.Position
	Layer      string
	Net        netRef
}

type keyView struct {
	keyboard.Key

	Footprint string
	Origin    sexp.Position // Switch center on the board
	Angle     float64       // Module rotation, counter-clockwise
	Diode     sexp.Position
	CapW      float64 // Half keycap width in mm
	CapH      float64 // Half keycap height in mm
	Sch       Point

	RowNet, ColumnNet, DiodeNet netRef
	Vias                        []via
	Segments                    []segment
}

type headerPin struct {
	Number int
	At     sexp.Position // Relative to the header origin
	SchY   int
	Net    netRef
}

type view struct {
	Title, Author, Comment string
	Date, Updated          string

	Nets     []netlist.Net
	Keys     []keyView
	Segments int

	Header          []headerPin
	HeaderFootprint string
	HeaderOrigin    sexp.Position
	HeaderSch       Point

	Outline sexp.BoundingBox
	Sheet   string
}

func (g *Generator) view() *view {
	now := g.opts.Now().UTC()
	v := &view{
		Title:   g.kb.Name,
		Author:  g.kb.Author,
		Comment: g.opts.Comment,
		Date:    now.Format("2006-01-02"),
		Updated: now.Format("02/01/2006 15:04:05"),
		Nets:    g.nets.Nets(),
		Outline: sexp.NewBoundingBox(),
	}

	ref := func(id int) netRef { return netRef{ID: id, Name: g.nets.Name(id)} }
	layout := g.opts.Layout
	maxSch := Point{}

	for _, k := range g.kb.Keys() {
		origin := layout.KeyOrigin(k.X, k.Y)
		kv := keyView{
			Key:       k,
			Footprint: SwitchFootprint(k.Width),
			Origin:    origin,
			Angle:     -k.Rotation,
			Diode:     layout.DiodeOrigin(k.X, k.Y),
			CapW:      k.Width * layout.KeyPitch / 2,
			CapH:      k.Height * layout.KeyPitch / 2,
			Sch:       g.opts.Schematic.Place(k.X, k.Y),
			RowNet:    ref(k.RowNet),
			ColumnNet: ref(k.ColumnNet),
			DiodeNet:  ref(k.DiodeNet),
		}

		for _, d := range columnViaOffsets {
			kv.Vias = append(kv.Vias, via{At: offset(origin, d), Net: kv.ColumnNet})
		}
		for _, d := range rowViaOffsets {
			kv.Vias = append(kv.Vias, via{At: offset(origin, d), Net: kv.RowNet})
		}
		kv.Segments = []segment{
			{offset(origin, rowViaOffsets[0]), offset(origin, rowViaOffsets[1]), "B.Cu", kv.RowNet},
			{offset(origin, columnViaOffsets[0]), offset(origin, columnViaOffsets[1]), "F.Cu", kv.ColumnNet},
			{offset(origin, diodeTraceOffsets[0]), offset(origin, diodeTraceOffsets[1]), "B.Cu", kv.DiodeNet},
		}
		v.Segments += len(kv.Segments)

		v.Outline.Expand(sexp.Position{X: origin.X - kv.CapW, Y: origin.Y - kv.CapH})
		v.Outline.Expand(sexp.Position{X: origin.X + kv.CapW, Y: origin.Y + kv.CapH})
		maxSch.X = max(maxSch.X, kv.Sch.X)
		maxSch.Y = max(maxSch.Y, kv.Sch.Y)

		v.Keys = append(v.Keys, kv)
	}

	g.placeHeader(v, ref)
	v.Sheet = sheetFor(maxSch, Point{X: v.HeaderSch.X, Y: v.HeaderSch.Y + 100*len(v.Header)})
	return v
}

// placeHeader adds a pin header exposing every row and column net to the
// left of the keys, so the matrix can be wired to any controller.
func (g *Generator) placeHeader(v *view, ref func(int) netRef) {
	ids := append(g.nets.RowNets(), g.nets.ColumnNets()...)
	pitch := 2.54

	if v.Outline.IsEmpty() {
		v.Outline.Expand(g.opts.Layout.KeyOrigin(0, 0))
	}
	v.HeaderOrigin = sexp.Position{X: v.Outline.Min.X - 5, Y: v.Outline.Min.Y + pitch}
	v.HeaderFootprint = fmt.Sprintf("%s:PinHeader_1x%02d_P2.54mm_Vertical", HeaderLibrary, len(ids))
	v.HeaderSch = Point{X: 300, Y: g.opts.Schematic.OriginY}

	for i, id := range ids {
		v.Header = append(v.Header, headerPin{
			Number: i + 1,
			At:     sexp.Position{X: 0, Y: float64(i) * pitch},
			SchY:   v.HeaderSch.Y + i*100,
			Net:    ref(id),
		})
	}

	last := sexp.Position{X: v.HeaderOrigin.X, Y: v.HeaderOrigin.Y + float64(len(ids)-1)*pitch}
	v.Outline.Expand(sexp.Position{X: v.HeaderOrigin.X - pitch, Y: v.HeaderOrigin.Y - pitch})
	v.Outline.Expand(sexp.Position{X: last.X + pitch, Y: last.Y + pitch})

	// Margin around caps and header
	v.Outline.Min = sexp.Position{X: v.Outline.Min.X - 2, Y: v.Outline.Min.Y - 2}
	v.Outline.Max = sexp.Position{X: v.Outline.Max.X + 2, Y: v.Outline.Max.Y + 2}
}

// sheetFor picks the smallest ISO sheet holding every symbol.
func sheetFor(keys, header Point) string {
	w := max(keys.X, header.X) + 1000
	h := max(keys.Y, header.Y) + 1000

	sheets := []struct {
		name string
		w, h int
	}{
		{"A4", 11693, 8268},
		{"A3", 16535, 11693},
		{"A2", 23386, 16535},
		{"A1", 33110, 23386},
	}
	for _, s := range sheets {
		if w <= s.w && h <= s.h {
			return fmt.Sprintf("%s %d %d", s.name, s.w, s.h)
		}
	}
	return "A0 46811 33110"
}

// schQuote quotes a title block field of the legacy schematic format.
func schQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	return `"` + s + `"`
}
