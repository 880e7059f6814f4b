// Package controller owns the render lifecycle of one target: it runs the
// text pipeline, waits for the shared engine, submits work and makes sure
// only the newest request ever reaches the target.
package controller

import (
	"context"
	"sync"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/engine"
	"github.com/gaurav-prasanna/texpipe/core/pipeline"
)

// Options configures a Controller.
type Options struct {
	Pipeline pipeline.Options
	Observer Observer
}

// DefaultOptions enables advanced processing and observes nothing.
func DefaultOptions() Options {
	return Options{Pipeline: pipeline.DefaultOptions()}
}

// Controller drives one target. All methods are safe for concurrent use.
type Controller struct {
	loader *engine.Loader
	target core.Target
	opts   Options

	// mu guards everything below and every write to target. state always
	// describes what target shows.
	mu         sync.Mutex
	state      core.RenderState
	latest     core.Token
	pending    *Submission
	waiting    bool
	cancelWait func()
	closed     bool
}

// New attaches a controller to target. The controller holds a reference on
// loader until Close.
func New(loader *engine.Loader, target core.Target, opts Options) *Controller {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Controller{
		loader: loader.Acquire(),
		target: target,
		opts:   opts,
		state:  core.Idle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() core.RenderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Latest returns the most recently minted token.
func (c *Controller) Latest() core.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Render requests a new rendering of raw. It returns at once; the
// submission resolves when the target has been written or the request has
// been overtaken, after the observer has been told. A submission resolves
// only after its target write is visible, so it can lag State; once Close
// returns, State is final. Engine failures never surface here.
func (c *Controller) Render(ctx context.Context, raw string, mode core.Mode) *Submission {
	res := pipeline.Process(raw, mode, c.opts.Pipeline)
	log := core.Logger()

	c.mu.Lock()
	c.latest++
	sub := newSubmission(ctx, c.latest, res)
	if c.closed {
		c.mu.Unlock()
		sub.resolve(Superseded, nil)
		return sub
	}

	prev := c.pending
	c.pending = nil

	if res.Wrapped == "" {
		c.state = core.Rendered
		c.target.Reset()
		c.mu.Unlock()
		c.supersede(prev)
		c.opts.Observer.Rendered(sub.Token)
		sub.resolve(Rendered, nil)
		return sub
	}

	if !c.loader.Ready() {
		c.state = core.AwaitingEngine
		c.pending = sub
		subscribe := !c.waiting
		c.waiting = true
		c.mu.Unlock()
		c.supersede(prev)

		log.Debug("awaiting engine", "token", sub.Token, "mode", sub.Mode.String())
		if subscribe {
			cancel := c.loader.OnReady(c.engineReady)
			c.mu.Lock()
			if c.waiting {
				c.cancelWait = cancel
			}
			c.mu.Unlock()
		}
		c.loader.EnsureLoaded()
		return sub
	}

	c.state = core.Submitting
	c.mu.Unlock()
	c.supersede(prev)

	go c.submit(sub)
	return sub
}

// supersede resolves a pending submission that a newer one replaced.
func (c *Controller) supersede(sub *Submission) {
	if sub == nil {
		return
	}
	c.opts.Observer.Discarded(sub.Token)
	sub.resolve(Superseded, nil)
}

// engineReady runs once the loader has an engine and submits whatever is
// pending at that moment.
func (c *Controller) engineReady() {
	c.mu.Lock()
	c.waiting = false
	c.cancelWait = nil
	sub := c.pending
	c.pending = nil
	if sub == nil || c.closed {
		c.mu.Unlock()
		return
	}
	c.state = core.Submitting
	c.mu.Unlock()

	go c.submit(sub)
}

func (c *Controller) submit(sub *Submission) {
	core.Logger().Debug("submitting", "token", sub.Token, "engine", c.loader.Name())
	out, err := c.loader.Typeset(sub.ctx, sub.Wrapped)

	c.mu.Lock()
	if sub.Token != c.latest || c.closed {
		c.mu.Unlock()
		c.supersede(sub)
		return
	}
	if err != nil {
		c.state = core.Fallback
		c.target.SetFallback(Plain(sub.Wrapped))
		c.mu.Unlock()

		core.Logger().Warn("typesetting failed, showing plain text",
			"token", sub.Token, "engine", c.loader.Name(), "error", err)
		c.opts.Observer.Failed(sub.Token, err)
		sub.resolve(Fallback, err)
		return
	}
	c.state = core.Rendered
	c.target.SetTypeset(out)
	c.mu.Unlock()

	c.opts.Observer.Rendered(sub.Token)
	sub.resolve(Rendered, nil)
}

// Close detaches the controller. Pending and in-flight submissions resolve
// Superseded and the loader reference is released. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancelWait
	c.cancelWait = nil
	c.waiting = false
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.supersede(pending)
	c.loader.Release()
}
