package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/pipeline"
)

// Outcome is how a submission ended.
type Outcome int

const (
	// Pending submissions have not resolved yet.
	Pending Outcome = iota
	// Rendered submissions wrote engine output, or reset the target for
	// empty text.
	Rendered
	// Fallback submissions wrote the plain rendition after an engine failure.
	Fallback
	// Superseded submissions were overtaken by a newer request and wrote
	// nothing.
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Rendered:
		return "rendered"
	case Fallback:
		return "fallback"
	case Superseded:
		return "superseded"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Submission is the future returned by Controller.Render.
type Submission struct {
	Token   core.Token
	Mode    core.MathMode
	Wrapped string

	ctx     context.Context
	done    chan struct{}
	once    sync.Once
	outcome Outcome
	err     error
}

func newSubmission(ctx context.Context, tok core.Token, res pipeline.Result) *Submission {
	return &Submission{
		Token:   tok,
		Mode:    res.Mode,
		Wrapped: res.Wrapped,
		ctx:     ctx,
		done:    make(chan struct{}),
	}
}

func (s *Submission) resolve(o Outcome, err error) {
	s.once.Do(func() {
		s.outcome = o
		s.err = err
		close(s.done)
	})
}

// Done is closed once the submission resolves.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Outcome returns the result so far without blocking.
func (s *Submission) Outcome() Outcome {
	select {
	case <-s.done:
		return s.outcome
	default:
		return Pending
	}
}

// Err returns the engine error behind a Fallback outcome.
func (s *Submission) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the submission resolves or ctx is done.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Pending, ctx.Err()
	}
}
