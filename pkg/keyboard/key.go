package keyboard

import (
	"fmt"
	"math"
)

// Key describes one physical keyswitch.
//
// Geometry is in layout units, where one unit is the pitch of a standard
// 1u keycap. X and Y locate the center of the key.
type Key struct {
	X      float64 // Center X in units
	Y      float64 // Center Y in units
	Width  float64 // Width in units (default 1)
	Height float64 // Height in units (default 1)

	Number   int     // 0-based ingestion order
	Legend   string  // Legend text, informational only
	Rotation float64 // Rotation in degrees, affects placement only

	Column int // Logical matrix column, set by GenerateMatrix

	// Net ids are 1-based indices into the net table. Zero means unresolved.
	RowNet    int
	ColumnNet int
	DiodeNet  int
}

// Row returns the geometric row of the key, floor(Y).
func (k Key) Row() int {
	return int(math.Floor(k.Y))
}

// String implements fmt.Stringer
func (k Key) String() string {
	return fmt.Sprintf("K%d(%q @ %.2f,%.2f r%d c%d)", k.Number, k.Legend, k.X, k.Y, k.Row(), k.Column)
}

// NetIDs carries the three net ids of a key.
type NetIDs struct {
	Row    int
	Column int
	Diode  int
}

// Resolved reports whether all three ids point into the net table.
func (n NetIDs) Resolved() bool {
	return n.Row > 0 && n.Column > 0 && n.Diode > 0
}
