// Package startex typesets with the pure Go TeX engine from star-tex.org
// and returns DVI.
package startex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"star-tex.org/x/tex"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/delim"
	"github.com/gaurav-prasanna/texpipe/core/engine"
)

// Name is the backend name reported in typeset output.
const Name = engine.BackendStarTeX

const basePreamble = `\nopagenumbers
\def\frac#1#2{{{#1}\over{#2}}}
\def\text#1{\hbox{#1}}
\def\newline{\hfil\break}
\def\\{\hfil\break}
`

var errNoPages = errors.New("no pages produced")

// Engine runs a fresh TeX interpreter per call.
type Engine struct {
	preamble string
}

// New builds an engine whose documents start with cfg's macros.
func New(cfg engine.Config) *Engine {
	return &Engine{preamble: basePreamble + cfg.Preamble()}
}

// Open is an engine.Opener. It runs a test document so format or font
// problems show up during acquisition.
func Open(ctx context.Context, cfg engine.Config) (core.Engine, error) {
	e := New(cfg)
	if _, err := e.Typeset(ctx, "$x$"); err != nil {
		return nil, fmt.Errorf("star-tex self-test: %w", err)
	}
	return e, nil
}

func (e *Engine) Name() string { return Name }

// Typeset runs src through TeX and returns the DVI output.
func (e *Engine) Typeset(ctx context.Context, src string) (core.Typeset, error) {
	if err := ctx.Err(); err != nil {
		return core.Typeset{}, err
	}

	var dvi, stdout bytes.Buffer
	t := tex.New()
	t.Stdout = &stdout
	t.Stderr = &stdout
	t.Stdlog = &stdout
	if err := t.Process(&dvi, strings.NewReader(e.Document(src))); err != nil {
		return core.Typeset{}, &core.MarkupError{
			Engine: Name,
			Source: src,
			Log:    stdout.String(),
			Err:    err,
		}
	}
	if dvi.Len() == 0 {
		return core.Typeset{}, &core.MarkupError{
			Engine: Name,
			Source: src,
			Log:    stdout.String(),
			Err:    errNoPages,
		}
	}

	return core.Typeset{
		Engine: Name,
		Format: "dvi",
		Data:   dvi.Bytes(),
		Source: src,
	}, nil
}

// Document builds the plain TeX input for src. MathJax style \( \) and
// \[ \] pairs become $ and $$.
func (e *Engine) Document(src string) string {
	var b strings.Builder
	b.WriteString(e.preamble)
	for _, seg := range delim.Split(src) {
		if !seg.Math {
			b.WriteString(seg.Text)
			continue
		}
		if seg.Pair.Display {
			b.WriteString("$$" + seg.Text + "$$")
		} else {
			b.WriteString("$" + seg.Text + "$")
		}
	}
	b.WriteString("\n\\bye\n")
	return b.String()
}
