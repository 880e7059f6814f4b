// Package cache memoizes engine output keyed by engine, engine
// configuration and source text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync/atomic"

	"github.com/gaurav-prasanna/texpipe/core"
	"github.com/gaurav-prasanna/texpipe/core/engine"
)

// Store holds typeset output by key.
type Store interface {
	Get(ctx context.Context, key string) (core.Typeset, bool, error)
	Put(ctx context.Context, key string, out core.Typeset) error
	Close() error
}

// Key fingerprints one typeset request. config is the Fingerprint of the
// configuration the engine was opened with.
func Key(engineName, config, src string) string {
	h := sha256.New()
	h.Write([]byte(engineName))
	h.Write([]byte{0})
	h.Write([]byte(config))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies the parts of cfg that change engine output:
// the macro preamble and the package list.
func Fingerprint(cfg engine.Config) string {
	h := sha256.New()
	h.Write([]byte(cfg.Preamble()))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(cfg.Packages, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Engine serves repeated sources from a Store. Failures are never cached.
type Engine struct {
	next   core.Engine
	store  Store
	config string

	hits   atomic.Int64
	misses atomic.Int64
}

// Wrap puts a cache in front of next, which was opened with cfg. Entries
// written under one configuration are never served under another.
func Wrap(next core.Engine, store Store, cfg engine.Config) *Engine {
	return &Engine{next: next, store: store, config: Fingerprint(cfg)}
}

// Opener wraps every engine open returns.
func Opener(open engine.Opener, store Store) engine.Opener {
	return func(ctx context.Context, cfg engine.Config) (core.Engine, error) {
		eng, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return Wrap(eng, store, cfg), nil
	}
}

func (e *Engine) Name() string { return e.next.Name() }

func (e *Engine) Typeset(ctx context.Context, src string) (core.Typeset, error) {
	log := core.Logger()
	key := Key(e.next.Name(), e.config, src)

	out, ok, err := e.store.Get(ctx, key)
	if err != nil {
		log.Warn("typeset cache read failed", "error", err)
	}
	if ok {
		e.hits.Add(1)
		log.Debug("typeset cache hit", "engine", out.Engine, "key", key[:12])
		return out, nil
	}
	e.misses.Add(1)

	out, err = e.next.Typeset(ctx, src)
	if err != nil {
		return out, err
	}
	if err := e.store.Put(ctx, key, out); err != nil {
		log.Warn("typeset cache write failed", "error", err)
	}
	return out, nil
}

// Stats returns hit and miss counts.
func (e *Engine) Stats() Stats {
	return Stats{Hits: e.hits.Load(), Misses: e.misses.Load()}
}
