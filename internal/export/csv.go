// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the tag table: one CSV row per entity per
// successfully processed URL.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/article-graph/pkg/types"
)

// DefaultPath is the tag table written when none is configured.
const DefaultPath = "tags.csv"

// Header is the first line of the tag table.
var Header = []string{"link", "tag", "tag_type"}

// Rows flattens results into table rows in input order. Failed results
// contribute nothing; an entity without a type gets an empty type column.
func Rows(results []types.Result) []types.Row {
	var rows []types.Row
	for _, r := range results {
		if !r.OK() {
			continue
		}
		for _, e := range r.Entities {
			rows = append(rows, types.Row{URL: r.URL, EntityName: e.Name, EntityType: e.Type})
		}
	}
	return rows
}

// Encode writes the header and rows as CSV to w.
func Encode(w io.Writer, rows []types.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.URL, row.EntityName, row.EntityType}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the tag table for results to path in one batch, replacing
// any existing file. The table is written to a temporary file in the same
// directory and renamed into place.
func WriteCSV(path string, results []types.Result) (int, error) {
	if path == "" {
		path = DefaultPath
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	rows := Rows(results)

	tmpFile, err := os.CreateTemp(dir, ".tags-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encErr := Encode(tmpFile, rows)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing tag table: %w", encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return len(rows), nil
}
