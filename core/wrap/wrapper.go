// Package wrap encloses text in math delimiters.
package wrap

import (
	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/delim"
)

// Wrap encloses text for mode m. Empty text stays empty, and text that is
// already enclosed or PreWrapped is returned unchanged, so Wrap never
// double-wraps.
func Wrap(text string, m core.MathMode) string {
	if text == "" {
		return ""
	}
	if _, ok := delim.Enclosed(text); ok {
		return text
	}
	switch m {
	case core.Display:
		return delim.DisplayDollar.Open + text + delim.DisplayDollar.Close
	case core.Inline:
		return delim.InlineDollar.Open + text + delim.InlineDollar.Close
	default:
		return text
	}
}
