package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/kle-pcbgen/pkg/kicad/sexp/kicadsexp"
)

// Items returns the elements of a list, or nil for an atom.
func Items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}
	return nil
}

// NodeName returns the leading symbol of a list, or the atom itself.
func NodeName(s kicadsexp.Sexp) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil expression")
	}
	if sym, ok := s.Head().(kicadsexp.Symbol); ok {
		return string(sym), nil
	}
	return "", fmt.Errorf("expected symbol at head of %s", s)
}

// FindNode returns the first child list whose head is key.
// Example: FindNode(module, "at") finds (at 100 50) in a module.
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range Items(s) {
		if isNode(item, key) {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes returns every child list whose head is key.
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range Items(s) {
		if isNode(item, key) {
			results = append(results, item)
		}
	}
	return results
}

func isNode(s kicadsexp.Sexp, key string) bool {
	if s == nil || s.IsLeaf() {
		return false
	}
	sym, ok := s.Head().(kicadsexp.Symbol)
	return ok && string(sym) == key
}

// HasSymbol reports whether a list contains the bare atom symbol.
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range Items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetString returns the atom at index in a list. Index 0 is the key.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	items := Items(s)
	if items == nil {
		return "", fmt.Errorf("expected list, got %v", s)
	}
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	sym, ok := items[index].(kicadsexp.Symbol)
	if !ok {
		return "", fmt.Errorf("expected symbol at index %d, got %s", index, items[index])
	}
	return string(sym), nil
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// GetPosition reads (keyword X Y [angle]), such as (at 10 20 90) or
// (start 1 2). The angle is optional and in degrees.
func GetPosition(s kicadsexp.Sexp) (PositionAngle, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return PositionAngle{}, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err := GetFloat(s, 2)
	if err != nil {
		return PositionAngle{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	pa := PositionAngle{Position: Position{X: x, Y: y}}
	if len(Items(s)) > 3 {
		angle, err := GetFloat(s, 3)
		if err != nil {
			return PositionAngle{}, fmt.Errorf("failed to parse angle: %w", err)
		}
		pa.Angle = Angle(angle)
	}
	return pa, nil
}

// ChildPosition finds the child node key and reads it with GetPosition.
func ChildPosition(s kicadsexp.Sexp, key string) (PositionAngle, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return PositionAngle{}, fmt.Errorf("missing (%s ...)", key)
	}
	return GetPosition(node)
}

// ChildFloat finds the child node key and returns its first value.
func ChildFloat(s kicadsexp.Sexp, key string) (float64, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return 0, fmt.Errorf("missing (%s ...)", key)
	}
	return GetFloat(node, 1)
}

// ChildString finds the child node key and returns its first value.
func ChildString(s kicadsexp.Sexp, key string) (string, error) {
	node, ok := FindNode(s, key)
	if !ok {
		return "", fmt.Errorf("missing (%s ...)", key)
	}
	return GetString(node, 1)
}

// ChildStrings returns every value of the child node key, for example
// the layer names of (layers F.Cu B.Cu).
func ChildStrings(s kicadsexp.Sexp, key string) []string {
	node, ok := FindNode(s, key)
	if !ok {
		return nil
	}

	var out []string
	for _, item := range Items(node)[1:] {
		if sym, ok := item.(kicadsexp.Symbol); ok {
			out = append(out, string(sym))
		}
	}
	return out
}
