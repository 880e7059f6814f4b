package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gaurav-prasanna/texpipe/core"
)

func TestSQLiteStore_PutGet(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	out := core.Typeset{Engine: "canvas", Format: "svg", Data: []byte("<svg/>"), Source: "$x$"}
	if err := st.Put(ctx, "k1", out); err != nil {
		t.Fatal(err)
	}

	got, ok, err := st.Get(ctx, "k1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Source != "$x$" || got.Format != "svg" || !bytes.Equal(got.Data, out.Data) {
		t.Fatalf("unexpected entry %+v", got)
	}

	if _, ok, err := st.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStore_Upsert(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Put(ctx, "k", core.Typeset{Source: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := st.Put(ctx, "k", core.Typeset{Source: "b"}); err != nil {
		t.Fatal(err)
	}
	n, err := st.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected count=1, got %d", n)
	}
	got, _, _ := st.Get(ctx, "k")
	if got.Source != "b" {
		t.Fatalf("expected overwrite, got %q", got.Source)
	}
	if err := st.Put(ctx, "", core.Typeset{}); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	ctx := context.Background()
	if err := st.Put(ctx, "old", core.Typeset{Source: "old"}); err != nil {
		t.Fatal(err)
	}
	st.now = func() time.Time { return base.Add(time.Hour) }
	if err := st.Put(ctx, "new", core.Typeset{Source: "new"}); err != nil {
		t.Fatal(err)
	}

	removed, err := st.Prune(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned, got %d", removed)
	}
	if _, ok, _ := st.Get(ctx, "old"); ok {
		t.Fatal("old entry survived prune")
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Put(context.Background(), "k", core.Typeset{Source: "kept"}); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if got, ok, _ := st.Get(context.Background(), "k"); !ok || got.Source != "kept" {
		t.Fatalf("entry lost across reopen: ok=%v %+v", ok, got)
	}
}
