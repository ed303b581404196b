// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite record of pipeline results across runs so
// extracted entities can be queried and exported after the fact.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/article-graph/pkg/types"
)

const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// Store manages the catalog database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the catalog database at path and creates the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			url TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL REFERENCES sources(url) ON DELETE CASCADE,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL REFERENCES sources(url) ON DELETE CASCADE,
			source TEXT NOT NULL,
			label TEXT NOT NULL,
			target TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_url ON entities(url)`,
		`CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_url ON relationships(url)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores results, replacing whatever an earlier run recorded for the
// same URLs. Failed results are kept with their error and no entities.
func (s *Store) Record(ctx context.Context, results []types.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ts := s.now().UTC().Format(time.RFC3339)

	for _, r := range results {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE url = ?`, r.URL); err != nil {
			return fmt.Errorf("deleting old entities: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE url = ?`, r.URL); err != nil {
			return fmt.Errorf("deleting old relationships: %w", err)
		}

		status := statusOK
		if !r.OK() {
			status = statusFailed
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sources (url, position, status, error, extracted_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(url) DO UPDATE SET
				position=excluded.position, status=excluded.status,
				error=excluded.error, extracted_at=excluded.extracted_at`,
			r.URL, r.Index, status, r.Reason(), ts,
		)
		if err != nil {
			return fmt.Errorf("upserting source %s: %w", r.URL, err)
		}

		for _, e := range r.Entities {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO entities (url, name, type) VALUES (?, ?, ?)`,
				r.URL, e.Name, e.Type,
			); err != nil {
				return fmt.Errorf("inserting entity %q: %w", e.Name, err)
			}
		}
		for _, rel := range r.Relationships {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO relationships (url, source, label, target) VALUES (?, ?, ?, ?)`,
				r.URL, rel.Source, rel.Label, rel.Target,
			); err != nil {
				return fmt.Errorf("inserting relationship: %w", err)
			}
		}
	}

	return tx.Commit()
}
