package project

import (
	"fmt"
	"math"
	"strconv"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp"
)

// LayoutConfig places keys on the board, in millimetres.
type LayoutConfig struct {
	KeyPitch float64 // Distance between 1u key centers (default: 19.05)
	OriginX  float64 // Board X of layout unit 0 (default: -100)
	OriginY  float64 // Board Y of layout unit 0 (default: 17.78)
}

// DefaultLayoutConfig returns the standard Cherry MX pitch and origin.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		KeyPitch: 19.05,
		OriginX:  -100,
		OriginY:  17.78,
	}
}

// Validate checks the configuration for errors.
func (c LayoutConfig) Validate() error {
	if c.KeyPitch <= 0 {
		return fmt.Errorf("project: key pitch must be positive, got %g", c.KeyPitch)
	}
	return nil
}

// KeyOrigin returns the board position of a key center given in units.
func (c LayoutConfig) KeyOrigin(x, y float64) sexp.Position {
	return sexp.Position{
		X: c.OriginX + x*c.KeyPitch,
		Y: c.OriginY + y*c.KeyPitch,
	}
}

// DiodeOrigin returns the board position of the diode belonging to the key
// centered at (x, y) units.
func (c LayoutConfig) DiodeOrigin(x, y float64) sexp.Position {
	return offset(c.KeyOrigin(x, y), diodeOffset)
}

// SchematicConfig places symbols on the schematic sheet, in mils.
type SchematicConfig struct {
	OriginX int // default: 600
	OriginY int // default: 800
	ScaleX  int // Mils per unit horizontally (default: 800)
	ScaleY  int // Mils per unit vertically (default: 500)
}

// DefaultSchematicConfig returns a spacing that keeps switch and diode
// symbols of neighbouring keys apart.
func DefaultSchematicConfig() SchematicConfig {
	return SchematicConfig{
		OriginX: 600,
		OriginY: 800,
		ScaleX:  800,
		ScaleY:  500,
	}
}

// Validate checks the configuration for errors.
func (c SchematicConfig) Validate() error {
	if c.ScaleX <= 0 || c.ScaleY <= 0 {
		return fmt.Errorf("project: schematic scale must be positive, got %dx%d", c.ScaleX, c.ScaleY)
	}
	return nil
}

// Point is a schematic coordinate in mils.
type Point struct {
	X, Y int
}

// Place returns the schematic position of a key center given in units.
// Coordinates are truncated to whole mils.
func (c SchematicConfig) Place(x, y float64) Point {
	return Point{
		X: int(float64(c.OriginX) + x*float64(c.ScaleX)),
		Y: int(float64(c.OriginY) + y*float64(c.ScaleY)),
	}
}

// Offsets from the switch origin, in millimetres.
var (
	diodeOffset       = sexp.Position{X: -6.35, Y: 8.89}
	columnViaOffsets  = [2]sexp.Position{{X: 0, Y: -2.03}, {X: 0, Y: 12.24}}
	rowViaOffsets     = [2]sexp.Position{{X: -9.68, Y: 9.83}, {X: 4.6, Y: 9.83}}
	diodeTraceOffsets = [2]sexp.Position{{X: -6.38, Y: 2.54}, {X: -6.38, Y: 7.77}}
)

func offset(p, d sexp.Position) sexp.Position {
	return sexp.Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// mm formats a board coordinate with at most four decimals.
func mm(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
