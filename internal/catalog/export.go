// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/article-graph/pkg/types"
)

// ExportEntry is one source with everything recorded for it.
type ExportEntry struct {
	Source        `yaml:",inline"`
	Entities      []types.Entity       `json:"entities" yaml:"entities"`
	Relationships []types.Relationship `json:"relationships" yaml:"relationships"`
}

// ExportYAML writes the whole catalog to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the whole catalog to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	sources, err := s.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(sources))
	for i, src := range sources {
		rows, err := s.Entities(ctx, Query{URL: src.URL, Limit: -1})
		if err != nil {
			return nil, err
		}
		rels, err := s.Relationships(ctx, src.URL)
		if err != nil {
			return nil, err
		}

		entries[i] = ExportEntry{
			Source:        src,
			Entities:      make([]types.Entity, len(rows)),
			Relationships: rels,
		}
		for j, r := range rows {
			entries[i].Entities[j] = types.Entity{Name: r.EntityName, Type: r.EntityType}
		}
		if entries[i].Relationships == nil {
			entries[i].Relationships = []types.Relationship{}
		}
	}
	return entries, nil
}
