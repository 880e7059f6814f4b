// Package sqlite is a persistent cache.Store backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gaurav-prasanna/texpipe/core"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating cache %s: %w", path, err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring cache %s: %w", path, err)
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS typeset (
  key         TEXT PRIMARY KEY,
  engine      TEXT NOT NULL,
  format      TEXT NOT NULL,
  source      TEXT NOT NULL,
  data        BLOB NOT NULL,
  created_at  INTEGER NOT NULL,
  last_hit_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_typeset_last_hit ON typeset(last_hit_at DESC);
`)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (core.Typeset, bool, error) {
	var out core.Typeset
	err := s.db.QueryRowContext(ctx, `
SELECT engine, format, source, data FROM typeset WHERE key=?
`, key).Scan(&out.Engine, &out.Format, &out.Source, &out.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Typeset{}, false, nil
	}
	if err != nil {
		return core.Typeset{}, false, err
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE typeset SET last_hit_at=? WHERE key=?`,
		s.now().UnixMilli(), key); err != nil {
		return out, true, err
	}
	return out, true, nil
}

func (s *Store) Put(ctx context.Context, key string, out core.Typeset) error {
	if key == "" {
		return errors.New("cache key required")
	}
	data := out.Data
	if data == nil {
		data = []byte{}
	}
	now := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO typeset(key, engine, format, source, data, created_at, last_hit_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  engine=excluded.engine, format=excluded.format, source=excluded.source,
  data=excluded.data, last_hit_at=excluded.last_hit_at
`, key, out.Engine, out.Format, out.Source, data, now, now)
	return err
}

// Prune deletes entries not hit since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM typeset WHERE last_hit_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM typeset`).Scan(&n)
	return n, err
}
