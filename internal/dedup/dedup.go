// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup collapses duplicate entities by normalized name.
package dedup

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/pdiddy/article-graph/pkg/types"
)

// Key returns the normalized form of an entity name: Unicode case-folded,
// trimmed, with inner whitespace runs collapsed to one space. Punctuation is
// left alone, so "U.S." and "US" stay distinct.
func Key(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// Entities returns entities with duplicates removed. The first occurrence of
// each key wins, keeping its spelling and type, and first-occurrence order is
// preserved. Entities whose key is empty are dropped. The input is not
// modified. Applying Entities to its own output returns an equal slice.
func Entities(entities []types.Entity) []types.Entity {
	seen := make(map[string]bool, len(entities))
	out := make([]types.Entity, 0, len(entities))
	for _, e := range entities {
		k := Key(e.Name)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
