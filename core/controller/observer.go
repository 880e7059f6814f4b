package controller

import (
	"sync/atomic"

	"github.com/gaurav-prasanna/texpipe/core"
)

// Observer is told how each submission ended, before the submission
// resolves. Calls happen outside the controller lock and may come from any
// goroutine.
type Observer interface {
	Rendered(tok core.Token)
	Failed(tok core.Token, err error)
	Discarded(tok core.Token)
}

type nopObserver struct{}

func (nopObserver) Rendered(core.Token)      {}
func (nopObserver) Failed(core.Token, error) {}
func (nopObserver) Discarded(core.Token)     {}

// Metrics counts outcomes. One Metrics may be shared by many controllers.
type Metrics struct {
	rendered  atomic.Int64
	failed    atomic.Int64
	discarded atomic.Int64
}

func (m *Metrics) Rendered(core.Token)      { m.rendered.Add(1) }
func (m *Metrics) Failed(core.Token, error) { m.failed.Add(1) }
func (m *Metrics) Discarded(core.Token)     { m.discarded.Add(1) }

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Rendered  int64 `json:"rendered"`
	Failed    int64 `json:"failed"`
	Discarded int64 `json:"discarded"`
}

// Snapshot reads all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Rendered:  m.rendered.Load(),
		Failed:    m.failed.Load(),
		Discarded: m.discarded.Load(),
	}
}
