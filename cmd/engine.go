package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/texpipe/core/cache"
	"github.com/gaurav-prasanna/texpipe/core/cache/memory"
	"github.com/gaurav-prasanna/texpipe/core/cache/sqlite"
	"github.com/gaurav-prasanna/texpipe/core/engine"
	"github.com/gaurav-prasanna/texpipe/core/engine/canvastex"
	"github.com/gaurav-prasanna/texpipe/core/engine/macro"
	"github.com/gaurav-prasanna/texpipe/core/engine/startex"
)

// engineConfig merges --engine-config, --engine and --macros.
func engineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if flagEngineConfig != "" {
		var err error
		if cfg, err = engine.LoadConfig(flagEngineConfig); err != nil {
			return cfg, err
		}
	}
	if flagEngine != "" {
		cfg.Engine = flagEngine
	}
	if flagMacros != "" {
		macros, err := macro.ParseFile(flagMacros)
		if err != nil {
			return cfg, fmt.Errorf("loading macros: %w", err)
		}
		cfg.Macros = append(cfg.Macros, macros...)
	}
	return cfg, nil
}

// opener picks the backend named in cfg.
func opener(backend string) (engine.Opener, error) {
	switch backend {
	case engine.BackendCanvas:
		return canvastex.Open, nil
	case engine.BackendStarTeX:
		return startex.Open, nil
	case engine.BackendNone:
		return engine.OpenNull, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s, %s or %s)",
			backend, engine.BackendCanvas, engine.BackendStarTeX, engine.BackendNone)
	}
}

// newLoader builds the shared engine loader behind a typeset cache. The
// returned func closes the cache.
func newLoader() (*engine.Loader, func(), error) {
	cfg, err := engineConfig()
	if err != nil {
		return nil, nil, err
	}
	open, err := opener(cfg.Engine)
	if err != nil {
		return nil, nil, err
	}

	var store cache.Store
	if flagCache != "" {
		s, err := sqlite.Open(flagCache)
		if err != nil {
			return nil, nil, fmt.Errorf("opening typeset cache: %w", err)
		}
		store = s
	} else {
		store = memory.New(memory.DefaultCapacity)
	}

	loader := engine.NewLoader(cfg, cache.Opener(open, store))
	return loader, func() { store.Close() }, nil
}
