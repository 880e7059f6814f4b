// Package engine acquires a typesetting engine once per process and shares
// it between render controllers.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gaurav-prasanna/texpipe/core"
)

// Opener acquires an engine for cfg. It may take a long time.
type Opener func(ctx context.Context, cfg Config) (core.Engine, error)

// Loader is the shared handle to the engine. Build one with NewLoader at
// start-up and pass it to every controller.
type Loader struct {
	cfg  Config
	open Opener

	once    sync.Once
	settled chan struct{}
	refs    atomic.Int64

	mu      sync.Mutex
	eng     core.Engine
	err     error
	nextID  int
	waiters map[int]func()
}

// NewLoader returns an idle loader. Nothing is acquired until EnsureLoaded.
func NewLoader(cfg Config, open Opener) *Loader {
	return &Loader{
		cfg:     cfg,
		open:    open,
		settled: make(chan struct{}),
		waiters: make(map[int]func()),
	}
}

// Name reports the configured backend.
func (l *Loader) Name() string { return l.cfg.Engine }

// Config returns the configuration the loader was built with.
func (l *Loader) Config() Config { return l.cfg }

// EnsureLoaded starts acquisition in the background. Only the first call
// has any effect.
func (l *Loader) EnsureLoaded() {
	l.once.Do(func() { go l.load() })
}

func (l *Loader) load() {
	defer close(l.settled)

	log := core.Logger()
	log.Debug("acquiring typesetting engine", "engine", l.cfg.Engine)

	eng, err := l.open(context.Background(), l.cfg)
	if err == nil && eng == nil {
		err = fmt.Errorf("opener returned no engine")
	}

	l.mu.Lock()
	if err != nil {
		l.err = fmt.Errorf("%w: %s: %w", core.ErrEngineUnavailable, l.cfg.Engine, err)
		l.waiters = nil
		l.mu.Unlock()
		log.Warn("typesetting engine unavailable", "engine", l.cfg.Engine, "error", err)
		return
	}
	l.eng = eng
	waiters := l.waiters
	l.waiters = nil
	l.mu.Unlock()

	log.Debug("typesetting engine ready", "engine", eng.Name(), "waiters", len(waiters))
	for _, fn := range waiters {
		fn()
	}
}

// Ready reports whether the engine has been acquired.
func (l *Loader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.eng != nil
}

// Err returns the acquisition failure, if any. It wraps
// core.ErrEngineUnavailable.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Wait blocks until acquisition has finished or ctx is done. It returns
// the acquisition error or ctx's error.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.settled:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnReady arranges for fn to run once the engine is ready. If it already
// is, fn runs before OnReady returns. After a failed acquisition fn never
// runs. The returned cancel func drops the subscription.
func (l *Loader) OnReady(fn func()) (cancel func()) {
	l.mu.Lock()
	if l.eng != nil {
		l.mu.Unlock()
		fn()
		return func() {}
	}
	if l.err != nil {
		l.mu.Unlock()
		return func() {}
	}
	id := l.nextID
	l.nextID++
	l.waiters[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.waiters, id)
		l.mu.Unlock()
	}
}

// Typeset forwards to the acquired engine. Calls are not serialized.
func (l *Loader) Typeset(ctx context.Context, src string) (core.Typeset, error) {
	l.mu.Lock()
	eng := l.eng
	l.mu.Unlock()
	if eng == nil {
		return core.Typeset{}, core.ErrEngineNotReady
	}
	return eng.Typeset(ctx, src)
}

// Acquire registers one more user of the loader.
func (l *Loader) Acquire() *Loader {
	l.refs.Add(1)
	return l
}

// Release drops one user registered with Acquire.
func (l *Loader) Release() {
	if l.refs.Add(-1) < 0 {
		l.refs.Store(0)
		core.Logger().Warn("loader released more often than acquired", "engine", l.cfg.Engine)
	}
}

// Refs returns the number of current users.
func (l *Loader) Refs() int64 {
	return l.refs.Load()
}
