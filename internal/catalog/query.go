// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/article-graph/pkg/types"
)

const defaultLimit = 100

// Query filters catalog lookups. Zero-valued fields do not filter.
type Query struct {
	// Type matches entity types case-insensitively.
	Type string

	// URL restricts results to one source.
	URL string

	// Name matches entity names containing this substring.
	Name string

	// Limit caps the result count. Zero uses 100; negative means no limit.
	Limit int
}

// Source is the recorded outcome for one URL.
type Source struct {
	URL         string `json:"url" yaml:"url"`
	Position    int    `json:"position" yaml:"position"`
	Status      string `json:"status" yaml:"status"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
	ExtractedAt string `json:"extracted_at" yaml:"extracted_at"`
}

// Entities returns rows matching q ordered by source position, then by
// insertion order within a source.
func (s *Store) Entities(ctx context.Context, q Query) ([]types.Row, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT e.url, e.name, e.type
		FROM entities e
		JOIN sources s ON s.url = e.url
		WHERE 1=1`)

	if q.Type != "" {
		qb.WriteString(` AND e.type = ? COLLATE NOCASE`)
		args = append(args, q.Type)
	}
	if q.URL != "" {
		qb.WriteString(` AND e.url = ?`)
		args = append(args, q.URL)
	}
	if q.Name != "" {
		qb.WriteString(` AND e.name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(q.Name)+"%")
	}

	qb.WriteString(` ORDER BY s.position, e.rowid`)

	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var out []types.Row
	for rows.Next() {
		var r types.Row
		if err := rows.Scan(&r.URL, &r.EntityName, &r.EntityType); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sources returns every recorded URL ordered by position.
func (s *Store) Sources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, position, status, COALESCE(error, ''), extracted_at
		 FROM sources ORDER BY position, url`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.URL, &src.Position, &src.Status, &src.Error, &src.ExtractedAt); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// Relationships returns the triples recorded for url in insertion order.
func (s *Store) Relationships(ctx context.Context, url string) ([]types.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, label, target FROM relationships WHERE url = ? ORDER BY rowid`, url)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var out []types.Relationship
	for rows.Next() {
		var rel types.Relationship
		if err := rows.Scan(&rel.Source, &rel.Label, &rel.Target); err != nil {
			return nil, fmt.Errorf("scanning relationship row: %w", err)
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
