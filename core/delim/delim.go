// Package delim knows the math delimiter pairs and splits text into prose
// and math segments.
package delim

import "strings"

// LineBreak is the canonical line-break marker produced by normalization.
const LineBreak = `\\`

// Pair is an opening/closing delimiter pair.
type Pair struct {
	Open    string
	Close   string
	Display bool
}

var (
	DisplayDollar  = Pair{Open: "$$", Close: "$$", Display: true}
	DisplayBracket = Pair{Open: `\[`, Close: `\]`, Display: true}
	InlineParen    = Pair{Open: `\(`, Close: `\)`}
	InlineDollar   = Pair{Open: "$", Close: "$"}
)

// Pairs lists the recognised pairs, longest opener first so "$$" wins over "$".
var Pairs = []Pair{DisplayDollar, DisplayBracket, InlineParen, InlineDollar}

// Enclosed reports whether s starts and ends with a matching pair.
func Enclosed(s string) (Pair, bool) {
	for _, p := range Pairs {
		if len(s) < len(p.Open)+len(p.Close) {
			continue
		}
		if strings.HasPrefix(s, p.Open) && strings.HasSuffix(s, p.Close) {
			return p, true
		}
	}
	return Pair{}, false
}

// Segment is a run of prose or the body of one delimited math span.
type Segment struct {
	Text string
	Math bool
	Pair Pair // set when Math is true
}

// Raw reproduces the segment as it appeared in the source.
func (s Segment) Raw() string {
	if !s.Math {
		return s.Text
	}
	return s.Pair.Open + s.Text + s.Pair.Close
}

// Split cuts s into prose and math segments. Escaped dollars and "\\"
// pairs never open or close a span. An opener without a closer stays in
// the surrounding prose, so joining the Raw forms always returns s.
func Split(s string) []Segment {
	var segs []Segment
	start := 0
	i := 0
	for i < len(s) {
		p, ok := openerAt(s, i)
		if !ok {
			i += step(s, i)
			continue
		}
		end, found := closerFrom(s, i+len(p.Open), p)
		if !found {
			i += len(p.Open)
			continue
		}
		if start < i {
			segs = append(segs, Segment{Text: s[start:i]})
		}
		segs = append(segs, Segment{Text: s[i+len(p.Open) : end], Math: true, Pair: p})
		i = end + len(p.Close)
		start = i
	}
	if start < len(s) {
		segs = append(segs, Segment{Text: s[start:]})
	}
	return segs
}

// step returns how many bytes to advance past a non-delimiter position.
// A backslash always swallows the byte after it.
func step(s string, i int) int {
	if s[i] == '\\' && i+1 < len(s) {
		return 2
	}
	return 1
}

func openerAt(s string, i int) (Pair, bool) {
	switch s[i] {
	case '$':
		if strings.HasPrefix(s[i:], "$$") {
			return DisplayDollar, true
		}
		return InlineDollar, true
	case '\\':
		if i+1 >= len(s) {
			return Pair{}, false
		}
		switch s[i+1] {
		case '[':
			return DisplayBracket, true
		case '(':
			return InlineParen, true
		}
	}
	return Pair{}, false
}

func closerFrom(s string, i int, p Pair) (int, bool) {
	for i < len(s) {
		if strings.HasPrefix(s[i:], p.Close) {
			return i, true
		}
		i += step(s, i)
	}
	return 0, false
}
