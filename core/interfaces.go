// Package core defines the pipeline types and interfaces for texpipe.
// Each stage of the pipeline is a small, testable interface.
package core

import (
	"context"
	"fmt"
)

// Mode is the presentation a caller asks for.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeInline  Mode = "inline"
	ModeDisplay Mode = "display"
	// ModeText marks caller-delimited prose with embedded math; it is
	// never wrapped.
	ModeText Mode = "text"
)

// ParseMode converts a flag value into a Mode. The empty string is auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeInline, ModeDisplay, ModeText:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want auto, inline, display or text)", s)
	}
}

// MathMode is the resolved presentation of a piece of text.
type MathMode int

const (
	Inline MathMode = iota
	Display
	// PreWrapped text is already delimited and must not be re-wrapped.
	PreWrapped
)

func (m MathMode) String() string {
	switch m {
	case Inline:
		return "inline"
	case Display:
		return "display"
	case PreWrapped:
		return "pre-wrapped"
	default:
		return fmt.Sprintf("MathMode(%d)", int(m))
	}
}

func (m MathMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// RenderState is the lifecycle state of one controller/target pair.
type RenderState int

const (
	Idle RenderState = iota
	AwaitingEngine
	Submitting
	Rendered
	Fallback
)

func (s RenderState) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingEngine:
		return "awaiting-engine"
	case Submitting:
		return "submitting"
	case Rendered:
		return "rendered"
	case Fallback:
		return "fallback"
	default:
		return fmt.Sprintf("RenderState(%d)", int(s))
	}
}

func (s RenderState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Token is minted for every render request on a target. Only the result
// carrying the latest token may reach the target.
type Token uint64

// Typeset holds engine output for one wrapped source string.
type Typeset struct {
	Engine string `json:"engine"`
	Format string `json:"format"` // "svg", "dvi"
	Data   []byte `json:"data"`
	Source string `json:"source"`
}

// ContentKind tells which kind of write a target last received.
type ContentKind int

const (
	ContentEmpty ContentKind = iota
	ContentTypeset
	ContentFallback
)

func (k ContentKind) String() string {
	switch k {
	case ContentTypeset:
		return "typeset"
	case ContentFallback:
		return "fallback"
	default:
		return "empty"
	}
}

// Content is a snapshot of what a target currently displays.
type Content struct {
	Kind    ContentKind
	Typeset *Typeset
	Text    string
}

// Normalizer canonicalises raw author markup. It never fails.
type Normalizer interface {
	Normalize(raw string) string
}

// Engine typesets delimiter-wrapped markup. Implementations must allow
// concurrent calls.
type Engine interface {
	Name() string
	Typeset(ctx context.Context, src string) (Typeset, error)
}

// Target is a caller-owned output sink. The render controller writes
// either engine output or a plain fallback into it.
type Target interface {
	SetTypeset(out Typeset)
	SetFallback(text string)
	Reset()
}

// Extractor decodes a fetched document into an exam.
type Extractor interface {
	Extract(res *FetchResult) (*Exam, error)
}

// Renderer converts a rendered exam into a final output format.
type Renderer interface {
	Render(doc *RenderedExam) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// Fetcher retrieves a raw exam document from a URL or a local path.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (*FetchResult, error)
}

// FetchResult holds the raw bytes and response metadata from a fetch.
type FetchResult struct {
	Source      string
	StatusCode  int
	ContentType string
	Body        []byte
}
