// Package daymarker keeps a small local record of the last day a daily task
// was evaluated, keyed by owner (a signed-in user or an anonymous device).
package daymarker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/AnimationBenoit/mygrowverse/internal/progression"
)

const lastTaskDateKey = "lastTaskDate"

// Store is a sqlite-backed key/value table of day markers.
type Store struct {
	db *sql.DB
}

// Open creates or opens the marker database at path. ":memory:" keeps it in process.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty day marker path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS day_markers (
			owner TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (owner, key)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init day marker schema: %w", err)
		}
	}
	return nil
}

// Get returns the last recorded day for owner. ok is false when none was stored.
func (s *Store) Get(ctx context.Context, owner string) (progression.Date, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM day_markers WHERE owner = ? AND key = ?`, owner, lastTaskDateKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return progression.Date{}, false, nil
	}
	if err != nil {
		return progression.Date{}, false, err
	}
	day, err := progression.ParseDate(raw)
	if err != nil {
		return progression.Date{}, false, fmt.Errorf("stored marker for %s: %w", owner, err)
	}
	return day, !day.IsZero(), nil
}

// Put records day for owner, replacing any earlier value.
func (s *Store) Put(ctx context.Context, owner string, day progression.Date) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO day_markers (owner, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value`,
		owner, lastTaskDateKey, day.String(),
	)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
