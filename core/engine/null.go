package engine

import (
	"context"
	"errors"

	"github.com/gaurav-prasanna/texpipe/core"
)

var errNoEngine = errors.New("no typesetting engine configured")

// Null is an engine that rejects everything. It makes every render fall
// back to plain text.
type Null struct{}

func (Null) Name() string { return BackendNone }

func (Null) Typeset(ctx context.Context, src string) (core.Typeset, error) {
	return core.Typeset{}, &core.MarkupError{
		Engine: BackendNone,
		Source: src,
		Err:    errNoEngine,
	}
}

// OpenNull is an Opener for Null.
func OpenNull(ctx context.Context, cfg Config) (core.Engine, error) {
	return Null{}, nil
}
