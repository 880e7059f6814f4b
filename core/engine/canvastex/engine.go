// Package canvastex typesets math to SVG with github.com/tdewolff/canvas.
package canvastex

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/delim"
	"github.com/gaurav-prasanna/texpipe/core/engine"
)

// Name is the backend name reported in typeset output.
const Name = engine.BackendCanvas

// margin around the formula, in millimetres.
const margin = 1.0

// textMacro gives plain TeX the \text command authors expect.
const textMacro = `\def\text#1{\hbox{#1}}`

// Engine renders one formula per call. It holds no mutable state, so
// concurrent calls are safe.
type Engine struct {
	preamble string
}

// New builds an engine that prepends cfg's macros to every formula.
func New(cfg engine.Config) *Engine {
	return &Engine{preamble: strings.ReplaceAll(cfg.Preamble(), "\n", " ")}
}

// Open is an engine.Opener. It typesets a test formula so font or parser
// problems surface during acquisition.
func Open(ctx context.Context, cfg engine.Config) (core.Engine, error) {
	e := New(cfg)
	if _, err := e.Typeset(ctx, "$x$"); err != nil {
		return nil, fmt.Errorf("canvas self-test: %w", err)
	}
	return e, nil
}

func (e *Engine) Name() string { return Name }

// Typeset renders src, which must be delimiter-wrapped, to SVG.
func (e *Engine) Typeset(ctx context.Context, src string) (core.Typeset, error) {
	if err := ctx.Err(); err != nil {
		return core.Typeset{}, err
	}

	formula := e.preamble + Formula(src)
	p, err := canvas.ParseLaTeX(formula)
	if err != nil {
		return core.Typeset{}, &core.MarkupError{Engine: Name, Source: src, Err: err}
	}

	c := canvas.New(0, 0)
	cctx := canvas.NewContext(c)
	cctx.SetFillColor(canvas.Black)
	cctx.DrawPath(0, 0, p)
	c.Fit(margin)

	var buf bytes.Buffer
	w := svg.New(&buf, c.W, c.H, nil)
	c.RenderTo(w)
	if err := w.Close(); err != nil {
		return core.Typeset{}, fmt.Errorf("writing svg: %w", err)
	}

	return core.Typeset{
		Engine: Name,
		Format: "svg",
		Data:   buf.Bytes(),
		Source: src,
	}, nil
}

// Formula turns wrapped text into the single math-mode formula the parser
// accepts. A lone span gives its body, with \displaystyle for display
// pairs. Mixed prose and math becomes a row of \hbox prose and braced math.
func Formula(src string) string {
	segs := delim.Split(src)
	if len(segs) == 1 && segs[0].Math {
		body := segs[0].Text
		if segs[0].Pair.Display {
			return textMacro + ` \displaystyle ` + body
		}
		return textMacro + " " + body
	}

	var b strings.Builder
	b.WriteString(textMacro)
	for _, seg := range segs {
		if seg.Math {
			b.WriteString("{")
			b.WriteString(seg.Text)
			b.WriteString("}")
			continue
		}
		for i, line := range strings.Split(seg.Text, delim.LineBreak) {
			if i > 0 {
				b.WriteString(`\quad `)
			}
			if line == "" {
				continue
			}
			b.WriteString(`\hbox{`)
			b.WriteString(EscapeProse(line))
			b.WriteString("}")
		}
	}
	return b.String()
}

var proseEscaper = strings.NewReplacer(
	"%", `\%`,
	"#", `\#`,
	"&", `\&`,
	"_", `\_`,
	"^", `\^{}`,
)

// EscapeProse makes plain prose safe inside \hbox.
func EscapeProse(s string) string {
	return proseEscaper.Replace(s)
}
