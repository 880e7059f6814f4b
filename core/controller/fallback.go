package controller

import (
	"strings"

	"github.com/gaurav-prasanna/texpipe/core/delim"
)

// Plain produces the plain rendition shown when the engine fails.
// Delimiters are removed, line-break markers become newlines and spacing
// is tidied. The result is deterministic. An escaped \$ is literal text and
// comes out as a bare $; it is the only $ the result can contain.
func Plain(wrapped string) string {
	var b strings.Builder
	for _, seg := range delim.Split(wrapped) {
		b.WriteString(seg.Text)
	}
	return tidy(stripMarkup(b.String()))
}

// stripMarkup drops stray delimiters and rewrites break commands and
// escaped dollars.
func stripMarkup(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '$' {
			continue
		}
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		switch next := s[i+1]; next {
		case '\\':
			b.WriteByte('\n')
			i++
		case '$':
			b.WriteByte('$')
			i++
		case '(', ')', '[', ']':
			i++
		default:
			if strings.HasPrefix(s[i+1:], "newline") && !isLetter(s, i+1+len("newline")) {
				b.WriteByte('\n')
				i += len("newline")
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isLetter(s string, i int) bool {
	return i < len(s) && (s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z')
}

// tidy collapses spaces on every line and trims the whole text.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
