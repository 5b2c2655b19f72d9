package kicadsexp

import "strings"

// Quote returns s as it must appear in a KiCad file: bare when it is a
// plain atom, otherwise double-quoted with backslash escapes.
func Quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\r\n()\"\\") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
