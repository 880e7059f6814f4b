// Package detect infers how a normalized string should be presented.
package detect

import (
	"strings"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/delim"
)

// environments are the \begin{...} blocks that call for display layout.
var environments = []string{
	"array",
	"matrix", "pmatrix", "bmatrix", "Bmatrix", "vmatrix", "Vmatrix",
	"cases",
	"align", "align*", "aligned",
	"equation", "equation*",
	"gather", "gather*", "gathered",
}

// operators are large operators that read badly inline.
var operators = []string{`\frac`, `\sum`, `\int`, `\prod`, `\lim`}

var indicators = func() []string {
	out := make([]string, 0, len(environments)+len(operators))
	for _, env := range environments {
		out = append(out, `\begin{`+env+`}`)
	}
	return append(out, operators...)
}()

// Indicators returns the substrings that force display mode.
func Indicators() []string {
	return append([]string(nil), indicators...)
}

// Detect classifies text. Text that already starts and ends with a
// delimiter pair is PreWrapped, text holding any indicator is Display, and
// everything else is Inline. Matching is case-sensitive.
func Detect(text string) core.MathMode {
	if _, ok := delim.Enclosed(text); ok {
		return core.PreWrapped
	}
	for _, ind := range indicators {
		if strings.Contains(text, ind) {
			return core.Display
		}
	}
	return core.Inline
}
