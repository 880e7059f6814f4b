package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/engine"
	"github.com/gaurav-prasanna/texpipe/core/target"
)

// gateEngine blocks every Typeset call until the test releases the gate
// for that source string.
type gateEngine struct {
	mu    sync.Mutex
	gates map[string]chan error
	calls []string
}

func newGateEngine() *gateEngine {
	return &gateEngine{gates: make(map[string]chan error)}
}

func (e *gateEngine) gate(src string) chan error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gateLocked(src)
}

func (e *gateEngine) gateLocked(src string) chan error {
	ch, ok := e.gates[src]
	if !ok {
		ch = make(chan error, 1)
		e.gates[src] = ch
	}
	return ch
}

func (e *gateEngine) release(src string, err error) { e.gate(src) <- err }

func (e *gateEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

func (e *gateEngine) Name() string { return "gate" }

func (e *gateEngine) Typeset(ctx context.Context, src string) (core.Typeset, error) {
	e.mu.Lock()
	e.calls = append(e.calls, src)
	ch := e.gateLocked(src)
	e.mu.Unlock()

	select {
	case err := <-ch:
		if err != nil {
			return core.Typeset{}, &core.MarkupError{Engine: "gate", Source: src, Err: err}
		}
		return core.Typeset{Engine: "gate", Format: "svg", Data: []byte("<svg/>"), Source: src}, nil
	case <-ctx.Done():
		return core.Typeset{}, ctx.Err()
	}
}

func readyLoader(t *testing.T, eng core.Engine) *engine.Loader {
	t.Helper()
	l := engine.NewLoader(engine.Config{Engine: "gate"}, func(context.Context, engine.Config) (core.Engine, error) {
		return eng, nil
	})
	l.EnsureLoaded()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("loader failed: %v", err)
	}
	return l
}

func wait(t *testing.T, sub *Submission) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	o, err := sub.Wait(ctx)
	if err != nil {
		t.Fatalf("submission %d never resolved: %v", sub.Token, err)
	}
	return o
}

func TestLastWriteWins(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	var m Metrics
	c := New(readyLoader(t, eng), buf, Options{Pipeline: DefaultOptions().Pipeline, Observer: &m})
	defer c.Close()

	ctx := context.Background()
	first := c.Render(ctx, "a", core.ModeInline)
	second := c.Render(ctx, "b", core.ModeInline)
	if first.Token >= second.Token {
		t.Fatalf("tokens not increasing: %d then %d", first.Token, second.Token)
	}

	eng.release("$b$", nil)
	if o := wait(t, second); o != Rendered {
		t.Fatalf("expected newest to render, got %s", o)
	}
	eng.release("$a$", nil)
	if o := wait(t, first); o != Superseded {
		t.Fatalf("expected stale result to be discarded, got %s", o)
	}

	got := buf.Content()
	if got.Kind != core.ContentTypeset || got.Typeset.Source != "$b$" {
		t.Fatalf("target shows %+v, want typeset $b$", got)
	}
	if buf.Writes() != 1 {
		t.Fatalf("expected exactly one target write, got %d", buf.Writes())
	}
	if c.State() != core.Rendered {
		t.Fatalf("expected rendered state, got %s", c.State())
	}
	if s := m.Snapshot(); s.Rendered != 1 || s.Discarded != 1 || s.Failed != 0 {
		t.Fatalf("unexpected metrics %+v", s)
	}
}

func TestStaleFailureIsSilent(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	var m Metrics
	c := New(readyLoader(t, eng), buf, Options{Pipeline: DefaultOptions().Pipeline, Observer: &m})
	defer c.Close()

	first := c.Render(context.Background(), "x", core.ModeDisplay)
	second := c.Render(context.Background(), "y", core.ModeDisplay)

	eng.release("$$y$$", nil)
	wait(t, second)
	eng.release("$$x$$", errors.New("undefined control sequence"))

	if o := wait(t, first); o != Superseded {
		t.Fatalf("expected superseded, got %s", o)
	}
	if first.Err() != nil {
		t.Fatalf("stale submission carries error %v", first.Err())
	}
	if c.State() != core.Rendered {
		t.Fatalf("stale failure changed state to %s", c.State())
	}
	if s := m.Snapshot(); s.Failed != 0 {
		t.Fatalf("stale failure was counted: %+v", s)
	}
}

func TestEngineFailureFallsBack(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	var m Metrics
	c := New(readyLoader(t, eng), buf, Options{Pipeline: DefaultOptions().Pipeline, Observer: &m})
	defer c.Close()

	sub := c.Render(context.Background(), "$$bad$$", core.ModeAuto)
	if sub.Wrapped != "$$bad$$" {
		t.Fatalf("expected pre-wrapped text to pass through, got %q", sub.Wrapped)
	}
	eng.release("$$bad$$", errors.New("bad input"))

	if o := wait(t, sub); o != Fallback {
		t.Fatalf("expected fallback, got %s", o)
	}
	var me *core.MarkupError
	if !errors.As(sub.Err(), &me) {
		t.Fatalf("expected markup error, got %v", sub.Err())
	}
	got := buf.Content()
	if got.Kind != core.ContentFallback || got.Text != "bad" {
		t.Fatalf("target shows %+v, want fallback \"bad\"", got)
	}
	if c.State() != core.Fallback {
		t.Fatalf("expected fallback state, got %s", c.State())
	}
	if s := m.Snapshot(); s.Failed != 1 {
		t.Fatalf("expected one failure, got %+v", s)
	}
}

func TestAwaitingEngineSubmitsLatestOnly(t *testing.T) {
	eng := newGateEngine()
	open := make(chan struct{})
	l := engine.NewLoader(engine.Config{Engine: "gate"}, func(context.Context, engine.Config) (core.Engine, error) {
		<-open
		return eng, nil
	})
	buf := target.NewBuffer()
	c := New(l, buf, DefaultOptions())
	defer c.Close()

	first := c.Render(context.Background(), `\frac{1}{2}`, core.ModeAuto)
	if c.State() != core.AwaitingEngine {
		t.Fatalf("expected awaiting-engine, got %s", c.State())
	}
	second := c.Render(context.Background(), "z", core.ModeAuto)
	if o := first.Outcome(); o != Superseded {
		t.Fatalf("expected first pending submission to be superseded at once, got %s", o)
	}
	if second.Outcome() != Pending {
		t.Fatalf("second submission resolved early: %s", second.Outcome())
	}

	eng.release("$z$", nil)
	close(open)

	if o := wait(t, second); o != Rendered {
		t.Fatalf("expected rendered, got %s", o)
	}
	if calls := eng.Calls(); len(calls) != 1 || calls[0] != "$z$" {
		t.Fatalf("engine saw %q, want only the latest submission", calls)
	}
}

func TestEmptyTextResetsTarget(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	buf.SetFallback("old")
	c := New(readyLoader(t, eng), buf, DefaultOptions())
	defer c.Close()

	sub := c.Render(context.Background(), "   ", core.ModeAuto)
	if o := wait(t, sub); o != Rendered {
		t.Fatalf("expected rendered, got %s", o)
	}
	if buf.Content().Kind != core.ContentEmpty {
		t.Fatalf("expected reset target, got %+v", buf.Content())
	}
	if len(eng.Calls()) != 0 {
		t.Fatal("engine should not be called for empty text")
	}
}

func TestCancelledContextFallsBack(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	c := New(readyLoader(t, eng), buf, DefaultOptions())
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := c.Render(ctx, `a \\ b`, core.ModeInline)
	cancel()

	if o := wait(t, sub); o != Fallback {
		t.Fatalf("expected fallback, got %s", o)
	}
	if got := buf.Content().Text; got != "a\nb" {
		t.Fatalf("unexpected fallback text %q", got)
	}
}

func TestCloseReleasesLoaderAndPending(t *testing.T) {
	l := engine.NewLoader(engine.Config{Engine: "never"}, func(context.Context, engine.Config) (core.Engine, error) {
		return nil, errors.New("not installed")
	})
	c := New(l, target.NewBuffer(), DefaultOptions())
	if l.Refs() != 1 {
		t.Fatalf("expected one reference, got %d", l.Refs())
	}

	sub := c.Render(context.Background(), "q", core.ModeAuto)
	c.Close()
	c.Close()

	if o := wait(t, sub); o != Superseded {
		t.Fatalf("expected superseded on close, got %s", o)
	}
	if l.Refs() != 0 {
		t.Fatalf("expected reference released, got %d", l.Refs())
	}
	if o := wait(t, c.Render(context.Background(), "r", core.ModeAuto)); o != Superseded {
		t.Fatalf("render after close should be superseded, got %s", o)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	eng := newGateEngine()
	c := New(readyLoader(t, eng), target.NewBuffer(), DefaultOptions())
	defer c.Close()

	sub := c.Render(context.Background(), "w", core.ModeInline)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if o, err := sub.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) || o != Pending {
		t.Fatalf("expected pending with deadline error, got %s, %v", o, err)
	}
	eng.release("$w$", nil)
	wait(t, sub)
}

func TestRecoversFromFallback(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	c := New(readyLoader(t, eng), buf, DefaultOptions())
	defer c.Close()
	ctx := context.Background()

	bad := c.Render(ctx, "bad", core.ModeInline)
	eng.release("$bad$", errors.New("undefined control sequence"))
	if o := wait(t, bad); o != Fallback || c.State() != core.Fallback {
		t.Fatalf("expected fallback, got %s in state %s", o, c.State())
	}

	good := c.Render(ctx, "good", core.ModeInline)
	eng.release("$good$", nil)
	if o := wait(t, good); o != Rendered {
		t.Fatalf("expected rendered, got %s", o)
	}
	if c.State() != core.Rendered {
		t.Fatalf("expected rendered state after recovery, got %s", c.State())
	}
	if got := buf.Content(); got.Kind != core.ContentTypeset || got.Typeset.Source != "$good$" {
		t.Fatalf("target shows %+v, want typeset $good$", got)
	}

	again := c.Render(ctx, "again", core.ModeInline)
	if c.State() != core.Submitting {
		t.Fatalf("expected a rendered controller to accept new work, got %s", c.State())
	}
	eng.release("$again$", nil)
	if o := wait(t, again); o != Rendered {
		t.Fatalf("expected rendered, got %s", o)
	}
	if got := buf.Content(); got.Typeset.Source != "$again$" {
		t.Fatalf("target shows %+v, want typeset $again$", got)
	}
}

// holdObserver blocks in Rendered until release is closed.
type holdObserver struct {
	entered chan core.Token
	release chan struct{}
}

func (o *holdObserver) Rendered(tok core.Token) {
	o.entered <- tok
	<-o.release
}
func (o *holdObserver) Failed(core.Token, error) {}
func (o *holdObserver) Discarded(core.Token)     {}

func TestStateIsFinalAfterCloseWhileResolving(t *testing.T) {
	eng := newGateEngine()
	buf := target.NewBuffer()
	obs := &holdObserver{entered: make(chan core.Token, 1), release: make(chan struct{})}
	c := New(readyLoader(t, eng), buf, Options{Pipeline: DefaultOptions().Pipeline, Observer: obs})

	sub := c.Render(context.Background(), "v", core.ModeInline)
	eng.release("$v$", nil)
	select {
	case <-obs.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("engine result never reached the observer")
	}

	// The target is written but the submission has not resolved yet.
	if o := sub.Outcome(); o != Pending {
		t.Fatalf("expected the submission to still be resolving, got %s", o)
	}
	c.Close()
	if c.State() != core.Rendered {
		t.Fatalf("expected rendered state after close, got %s", c.State())
	}
	if got := buf.Content(); got.Kind != core.ContentTypeset || got.Typeset.Source != "$v$" {
		t.Fatalf("target shows %+v, want typeset $v$", got)
	}

	close(obs.release)
	if o := wait(t, sub); o != Rendered {
		t.Fatalf("expected rendered, got %s", o)
	}
}
