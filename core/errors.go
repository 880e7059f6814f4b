package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable means the typesetting engine could not be acquired.
	// Controllers never see it; they simply keep waiting for readiness.
	ErrEngineUnavailable = errors.New("typesetting engine unavailable")

	// ErrEngineNotReady is returned when typesetting is requested before the
	// engine has finished loading.
	ErrEngineNotReady = errors.New("typesetting engine not ready")
)

// MarkupError is reported by an engine when the wrapped text is not valid
// input for it.
type MarkupError struct {
	Engine string
	Source string
	Log    string
	Err    error
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("%s: malformed markup %q: %v", e.Engine, e.Source, e.Err)
}

func (e *MarkupError) Unwrap() error { return e.Err }
