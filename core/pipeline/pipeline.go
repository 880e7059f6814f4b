// Package pipeline runs normalize, detect and wrap as one pure function.
package pipeline

import (
	"strings"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/delim"
	"github.com/gaurav-prasanna/texpipe/core/detect"
	"github.com/gaurav-prasanna/texpipe/core/normalize"
	"github.com/gaurav-prasanna/texpipe/core/wrap"
)

// Options controls preprocessing.
type Options struct {
	// Advanced enables normalization and mode detection. Without it the
	// text is only trimmed and wrapped.
	Advanced bool
}

// DefaultOptions returns the options used when a caller gives none.
func DefaultOptions() Options {
	return Options{Advanced: true}
}

// Result is the outcome of Process.
type Result struct {
	Normalized string
	Mode       core.MathMode
	Wrapped    string
}

// Resolve maps a requested mode onto a MathMode for already normalized text.
func Resolve(text string, mode core.Mode) core.MathMode {
	switch mode {
	case core.ModeInline:
		return core.Inline
	case core.ModeDisplay:
		return core.Display
	case core.ModeText:
		return core.PreWrapped
	default:
		return detect.Detect(text)
	}
}

// Process turns raw author text into wrapped text ready for an engine.
func Process(raw string, mode core.Mode, opts Options) Result {
	if !opts.Advanced {
		return basic(raw, mode)
	}
	text := normalize.Normalize(raw)
	m := Resolve(text, mode)
	return Result{Normalized: text, Mode: m, Wrapped: wrap.Wrap(text, m)}
}

func basic(raw string, mode core.Mode) Result {
	text := strings.TrimSpace(raw)
	m := core.Inline
	switch {
	case text == "":
	case mode == core.ModeText:
		m = core.PreWrapped
	case isEnclosed(text):
		m = core.PreWrapped
	case mode == core.ModeDisplay:
		m = core.Display
	}
	return Result{Normalized: text, Mode: m, Wrapped: wrap.Wrap(text, m)}
}

func isEnclosed(text string) bool {
	_, ok := delim.Enclosed(text)
	return ok
}
