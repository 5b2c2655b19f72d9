// Package kle reads keyboard layouts produced by keyboard-layout-editor.com
// and turns them into a keyboard.Keyboard with absolute key positions.
//
// A layout is a list of rows. Each row is a list whose strings are key
// legends and whose objects modify the next key:
//
//	[{"name": "Test80"}, ["Esc", {"x": 1}, "F1"], [{"w": 1.5}, "Tab", "Q"]]
//
// Both the JSON download and the editor's "Raw data" text (unquoted keys, no
// outer brackets) are accepted.
package kle

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
)

// ErrMalformedLayout is wrapped by every structural input error.
var ErrMalformedLayout = errors.New("kle: malformed layout")

// ElementError reports an element of unexpected type or value.
type ElementError struct {
	Row      int    // Index of the top-level element
	Position int    // Index inside the row, -1 for a top-level element
	Field    string // Modifier name when a modifier value is bad
	Value    any    // Offending value
}

func (e *ElementError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("kle: row %d, position %d: modifier %q has invalid value %v (%T)",
			e.Row, e.Position, e.Field, e.Value, e.Value)
	case e.Position < 0:
		return fmt.Sprintf("kle: element %d: unexpected %T (%v), want a row or metadata object",
			e.Row, e.Value, e.Value)
	default:
		return fmt.Sprintf("kle: row %d, position %d: unexpected %T (%v), want a legend or modifier object",
			e.Row, e.Position, e.Value, e.Value)
	}
}

// Unwrap lets errors.Is match ErrMalformedLayout.
func (e *ElementError) Unwrap() error {
	return ErrMalformedLayout
}

// cursor tracks the top-left corner of the next key, in units.
type cursor struct {
	x, y float64
}

// Ingest walks decoded layout elements (as produced by encoding/json into
// []any) and returns the populated keyboard. Any bad element aborts the
// whole ingestion.
func Ingest(elements []any) (*keyboard.Keyboard, error) {
	kb := keyboard.New()
	var c cursor

	for i, element := range elements {
		switch el := element.(type) {
		case []any:
			if err := ingestRow(kb, &c, i, el); err != nil {
				return nil, err
			}
		case map[string]any:
			applyMetadata(kb, el)
		default:
			return nil, &ElementError{Row: i, Position: -1, Value: element}
		}
	}

	return kb, nil
}

func ingestRow(kb *keyboard.Keyboard, c *cursor, rowIndex int, row []any) error {
	c.x = 0
	width, height := 1.0, 1.0
	rotation := 0.0 // sticky within the row

	for pos, item := range row {
		switch v := item.(type) {
		case map[string]any:
			for name, raw := range v {
				switch name {
				case "x", "y", "w", "h", "r":
				default:
					continue // styling, alignment, rotation origin
				}

				f, ok := number(raw)
				if !ok || ((name == "w" || name == "h") && f <= 0) {
					return &ElementError{Row: rowIndex, Position: pos, Field: name, Value: raw}
				}

				switch name {
				case "x":
					c.x += f
				case "y":
					c.y += f
				case "w":
					width = f
				case "h":
					height = f
				case "r":
					rotation = f
				}
			}

		case string:
			err := kb.Append(keyboard.Key{
				X:        c.x + width/2,
				Y:        c.y + height/2,
				Width:    width,
				Height:   height,
				Legend:   v,
				Rotation: rotation,
			})
			if err != nil {
				return err
			}

			c.x += width
			width, height = 1, 1

		default:
			return &ElementError{Row: rowIndex, Position: pos, Value: item}
		}
	}

	c.y++
	return nil
}

// applyMetadata copies name and author from the metadata block. Other
// fields (background, radii, switch info) are ignored.
func applyMetadata(kb *keyboard.Keyboard, meta map[string]any) {
	if name, ok := meta["name"].(string); ok {
		kb.Name = name
	}
	if author, ok := meta["author"].(string); ok {
		kb.Author = author
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
