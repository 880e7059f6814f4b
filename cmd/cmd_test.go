package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/texpipe/core/engine"
)

func resetFlags() {
	flagHTML, flagMarkdown, flagJSON, flagPDF = false, false, false, false
	flagBatch = 16
	flagEngine, flagEngineConfig, flagMacros, flagCache = "", "", "", ""
}

func TestValidateFlags(t *testing.T) {
	resetFlags()
	if err := validateFlags(); err == nil {
		t.Fatal("expected an error without an output format")
	}
	flagHTML = true
	if err := validateFlags(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flagPDF = true
	if err := validateFlags(); err == nil {
		t.Fatal("expected an error with two output formats")
	}
	resetFlags()
	flagJSON = true
	flagBatch = 0
	if err := validateFlags(); err == nil {
		t.Fatal("expected an error for a zero batch size")
	}
}

func TestSelectRenderer(t *testing.T) {
	resetFlags()
	want := map[*bool]string{&flagHTML: ".html", &flagMarkdown: ".md", &flagJSON: ".json", &flagPDF: ".pdf"}
	for flag, ext := range want {
		resetFlags()
		*flag = true
		r, err := selectRenderer()
		if err != nil || r.Extension() != ext {
			t.Fatalf("expected %s renderer, got %v, %v", ext, r, err)
		}
	}
}

func TestOpener(t *testing.T) {
	for _, name := range []string{engine.BackendCanvas, engine.BackendStarTeX, engine.BackendNone} {
		if _, err := opener(name); err != nil {
			t.Fatalf("opener(%q): %v", name, err)
		}
	}
	if _, err := opener("mathjax"); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestEngineConfigMergesFlags(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "engine.json")
	if err := os.WriteFile(cfgPath, []byte(`{"engine":"startex","macros":[{"name":"R","args":0,"body":"\\mathbb{R}"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	macroPath := filepath.Join(dir, "macros.tex")
	if err := os.WriteFile(macroPath, []byte(`\newcommand{\half}{\frac{1}{2}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	flagEngineConfig = cfgPath
	flagMacros = macroPath
	flagEngine = engine.BackendNone
	defer resetFlags()

	cfg, err := engineConfig()
	if err != nil {
		t.Fatalf("engineConfig: %v", err)
	}
	if cfg.Engine != engine.BackendNone {
		t.Fatalf("--engine did not override the file: %q", cfg.Engine)
	}
	if len(cfg.Macros) != 2 || cfg.Macros[0].Name != "R" || cfg.Macros[1].Name != "half" {
		t.Fatalf("unexpected macros %+v", cfg.Macros)
	}
}
