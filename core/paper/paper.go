// Package paper renders every question of an exam through its own render
// controller and collects the results for the output renderers.
package paper

import (
	"context"
	"time"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/chunk"
	"github.com/gaurav-prasanna/texpipe/core/controller"
	"github.com/gaurav-prasanna/texpipe/core/engine"
	"github.com/gaurav-prasanna/texpipe/core/pipeline"
	"github.com/gaurav-prasanna/texpipe/core/target"
)

// DefaultTimeout bounds how long one batch waits for the engine.
const DefaultTimeout = 30 * time.Second

// Options configures Render.
type Options struct {
	Mode     core.Mode
	Pipeline pipeline.Options
	// Timeout bounds each batch. Questions still unresolved when it
	// expires are shown as plain text.
	Timeout time.Duration
	// Batch is the number of controllers alive at once.
	Batch    int
	Observer controller.Observer
}

// DefaultOptions renders questions as prose with embedded math.
func DefaultOptions() Options {
	return Options{
		Mode:     core.ModeText,
		Pipeline: pipeline.DefaultOptions(),
		Timeout:  DefaultTimeout,
		Batch:    chunk.DefaultSize,
	}
}

type slot struct {
	section, question int
}

// Render typesets every question of exam. It never fails because of the
// engine: questions the engine cannot handle in time fall back to plain
// text. The error is only non-nil when ctx ends first.
func Render(ctx context.Context, loader *engine.Loader, exam *core.Exam, source string, opts Options) (*core.RenderedExam, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := core.Logger()

	doc := &core.RenderedExam{
		Source:   source,
		Exam:     exam,
		Sections: make([]core.RenderedSection, len(exam.Questions)),
	}
	var slots []slot
	for i, sec := range exam.Questions {
		doc.Sections[i] = core.RenderedSection{
			Section:   sec,
			Questions: make([]core.RenderedQuestion, len(sec.Questions)),
		}
		for j, q := range sec.Questions {
			doc.Sections[i].Questions[j] = core.RenderedQuestion{Question: q, Number: j + 1}
			slots = append(slots, slot{section: i, question: j})
		}
	}

	// A backend that cannot load would keep every controller waiting for
	// the full timeout, so find out once up front.
	loader.EnsureLoaded()
	loadCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	loadErr := loader.Wait(loadCtx)
	cancel()
	if loadErr != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Warn("engine unavailable, questions will be shown as plain text",
			"engine", loader.Name(), "error", loadErr)
	}

	copts := controller.Options{Pipeline: opts.Pipeline, Observer: opts.Observer}
	for _, batch := range chunk.Batch(chunk.New(opts.Batch), slots) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		renderBatch(ctx, loader, doc, batch, opts, copts, loadErr != nil)
	}

	doc.RenderedAt = time.Now().UTC()
	return doc, nil
}

func renderBatch(ctx context.Context, loader *engine.Loader, doc *core.RenderedExam, batch []slot, opts Options, copts controller.Options, unavailable bool) {
	bufs := make([]*target.Buffer, len(batch))
	ctrls := make([]*controller.Controller, len(batch))
	subs := make([]*controller.Submission, len(batch))

	for i, s := range batch {
		q := doc.Sections[s.section].Questions[s.question]
		bufs[i] = target.NewBuffer()
		ctrls[i] = controller.New(loader, bufs[i], copts)
		subs[i] = ctrls[i].Render(ctx, q.QuestionLatex, opts.Mode)
	}

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	for i, s := range batch {
		rq := &doc.Sections[s.section].Questions[s.question]
		sub := subs[i]

		if !unavailable {
			sub.Wait(waitCtx)
		}
		// After Close the controller no longer writes and its state is the
		// one the buffer reflects. The submission itself may still be
		// resolving.
		ctrls[i].Close()

		rq.Mode = sub.Mode
		rq.Wrapped = sub.Wrapped
		rq.Plain = controller.Plain(sub.Wrapped)

		switch st := ctrls[i].State(); st {
		case core.Rendered, core.Fallback:
			rq.State = st
		default:
			// Still waiting on the engine: show the plain rendition.
			core.Logger().Debug("question timed out", "question", rq.QuestionID, "token", sub.Token)
			bufs[i].SetFallback(rq.Plain)
			rq.State = core.Fallback
		}
		rq.Content = bufs[i].Content()
	}
}
