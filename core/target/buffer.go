// Package target provides core.Target implementations.
package target

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/texpipe/core"
)

// Buffer keeps the last write in memory.
type Buffer struct {
	ID string

	mu      sync.Mutex
	content core.Content
	writes  int
}

// NewBuffer returns an empty buffer with a fresh ID.
func NewBuffer() *Buffer {
	return &Buffer{ID: uuid.NewString()}
}

func (b *Buffer) SetTypeset(out core.Typeset) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = core.Content{Kind: core.ContentTypeset, Typeset: &out}
	b.writes++
}

func (b *Buffer) SetFallback(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = core.Content{Kind: core.ContentFallback, Text: text}
	b.writes++
}

func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = core.Content{}
	b.writes++
}

// Content returns what the buffer currently holds.
func (b *Buffer) Content() core.Content {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Writes counts every SetTypeset, SetFallback and Reset call.
func (b *Buffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Replay writes c into dst as the matching Target call.
func Replay(c core.Content, dst core.Target) {
	switch c.Kind {
	case core.ContentTypeset:
		if c.Typeset != nil {
			dst.SetTypeset(*c.Typeset)
			return
		}
		dst.Reset()
	case core.ContentFallback:
		dst.SetFallback(c.Text)
	default:
		dst.Reset()
	}
}
