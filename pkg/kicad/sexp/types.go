// Package sexp provides navigation helpers and shared geometry types for
// KiCad files read with kicadsexp.
package sexp

import "math"

// Position is a point in millimetres (board) or mils (legacy schematic).
type Position struct {
	X float64
	Y float64
}

// Angle is a rotation in degrees.
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position // Minimum (top-left) corner
	Max Position // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty reports whether nothing has been added to the box.
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand grows the box to include pos.
func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = math.Min(bb.Min.X, pos.X)
	bb.Min.Y = math.Min(bb.Min.Y, pos.Y)
	bb.Max.X = math.Max(bb.Max.X, pos.X)
	bb.Max.Y = math.Max(bb.Max.Y, pos.Y)
}

// Contains checks if a position is within the bounding box
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X && pos.X <= bb.Max.X &&
		pos.Y >= bb.Min.Y && pos.Y <= bb.Max.Y
}

func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}
