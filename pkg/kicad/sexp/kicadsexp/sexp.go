// Package kicadsexp is a small streaming S-expression reader and writer for
// KiCad files. Quoted strings and bare atoms both become Symbols; callers
// know from the file format which positions hold which.
package kicadsexp

import "strings"

// Sexp is either an atom (Symbol) or a List.
type Sexp interface {
	// IsLeaf reports whether this is an atom
	IsLeaf() bool

	// Len returns the number of elements of a list, 1 for an atom
	Len() int

	// Head returns the first element of a list, or the atom itself
	Head() Sexp

	// Tail returns a list of everything after the first element, or nil
	Tail() Sexp

	String() string
}

// Symbol is an atom: a number, keyword or unquoted string.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) Len() int       { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return Quote(string(s)) }

// List is a parenthesised sequence of expressions.
type List struct {
	elements []Sexp
}

// NewList builds a list from its elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) Len() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at index, or nil when out of range.
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// ParseString parses expressions from a string.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
