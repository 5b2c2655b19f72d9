package kicadsexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError reports malformed input with its line number.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokAtom
)

type token struct {
	kind tokenKind
	text string
	line int
}

// scanner splits the input into parentheses and atoms. Quoted strings are
// returned unescaped as atoms.
type scanner struct {
	r    *bufio.Reader
	line int
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r), line: 1}
}

func (s *scanner) next() (token, error) {
	for {
		ch, _, err := s.r.ReadRune()
		if errors.Is(err, io.EOF) {
			return token{kind: tokEOF, line: s.line}, nil
		}
		if err != nil {
			return token{}, err
		}

		switch {
		case ch == '\n':
			s.line++
		case unicode.IsSpace(ch):
		case ch == '(':
			return token{kind: tokOpen, line: s.line}, nil
		case ch == ')':
			return token{kind: tokClose, line: s.line}, nil
		case ch == '"':
			return s.quoted()
		default:
			return s.bare(ch)
		}
	}
}

func (s *scanner) quoted() (token, error) {
	start := s.line
	var b strings.Builder
	escaped := false

	for {
		ch, _, err := s.r.ReadRune()
		if errors.Is(err, io.EOF) {
			return token{}, &SyntaxError{Line: start, Msg: "unterminated string"}
		}
		if err != nil {
			return token{}, err
		}
		if ch == '\n' {
			s.line++
		}

		if escaped {
			escaped = false
			switch ch {
			case 'n':
				ch = '\n'
			case 't':
				ch = '\t'
			case 'r':
				ch = '\r'
			}
			b.WriteRune(ch)
			continue
		}

		switch ch {
		case '\\':
			escaped = true
		case '"':
			return token{kind: tokAtom, text: b.String(), line: start}, nil
		default:
			b.WriteRune(ch)
		}
	}
}

func (s *scanner) bare(first rune) (token, error) {
	var b strings.Builder
	b.WriteRune(first)

	for {
		ch, _, err := s.r.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			s.r.UnreadRune()
			break
		}
		b.WriteRune(ch)
	}
	return token{kind: tokAtom, text: b.String(), line: s.line}, nil
}

// Parse reads every top-level expression from r. Lists are built on an
// explicit stack, so deeply nested boards do not grow the Go stack.
func Parse(r io.Reader) ([]Sexp, error) {
	sc := newScanner(r)

	type frame struct {
		list *List
		line int
	}
	var (
		top   []Sexp
		stack []frame
	)

	emit := func(e Sexp) {
		if n := len(stack); n > 0 {
			stack[n-1].list.elements = append(stack[n-1].list.elements, e)
			return
		}
		top = append(top, e)
	}

	for {
		tok, err := sc.next()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokEOF:
			if n := len(stack); n > 0 {
				return nil, &SyntaxError{Line: stack[n-1].line, Msg: "list is never closed"}
			}
			return top, nil
		case tokOpen:
			stack = append(stack, frame{list: &List{}, line: tok.line})
		case tokClose:
			n := len(stack)
			if n == 0 {
				return nil, &SyntaxError{Line: tok.line, Msg: "unexpected ')'"}
			}
			done := stack[n-1].list
			stack = stack[:n-1]
			emit(done)
		case tokAtom:
			emit(Symbol(tok.text))
		}
	}
}
