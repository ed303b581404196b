// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/article-graph/pkg/types"
)

func TestEntities(t *testing.T) {
	tests := []struct {
		name string
		in   []types.Entity
		want []types.Entity
	}{
		{
			name: "case-insensitive duplicate collapses to first",
			in:   []types.Entity{{Name: "Soil", Type: "Concept"}, {Name: "soil", Type: "Concept"}},
			want: []types.Entity{{Name: "Soil", Type: "Concept"}},
		},
		{
			name: "first type wins on conflict",
			in:   []types.Entity{{Name: "Nitrogen", Type: "Chemical"}, {Name: "NITROGEN", Type: "Nutrient"}},
			want: []types.Entity{{Name: "Nitrogen", Type: "Chemical"}},
		},
		{
			name: "whitespace normalized",
			in:   []types.Entity{{Name: "crop  rotation", Type: "Process"}, {Name: " Crop rotation ", Type: "Process"}},
			want: []types.Entity{{Name: "crop  rotation", Type: "Process"}},
		},
		{
			name: "punctuation kept distinct",
			in:   []types.Entity{{Name: "U.S.", Type: "Location"}, {Name: "US", Type: "Location"}},
			want: []types.Entity{{Name: "U.S.", Type: "Location"}, {Name: "US", Type: "Location"}},
		},
		{
			name: "unicode folding",
			in:   []types.Entity{{Name: "École", Type: "Organization"}, {Name: "éCOLE", Type: "Concept"}},
			want: []types.Entity{{Name: "École", Type: "Organization"}},
		},
		{
			name: "order of first occurrence preserved",
			in: []types.Entity{
				{Name: "B", Type: "x"}, {Name: "A", Type: "x"}, {Name: "b", Type: "y"}, {Name: "C", Type: "x"},
			},
			want: []types.Entity{{Name: "B", Type: "x"}, {Name: "A", Type: "x"}, {Name: "C", Type: "x"}},
		},
		{
			name: "empty names dropped",
			in:   []types.Entity{{Name: "", Type: "x"}, {Name: "   ", Type: "y"}, {Name: "Z", Type: "z"}},
			want: []types.Entity{{Name: "Z", Type: "z"}},
		},
		{
			name: "nil input",
			in:   nil,
			want: []types.Entity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Entities(tt.in))
		})
	}
}

func TestEntitiesIdempotent(t *testing.T) {
	in := []types.Entity{
		{Name: "Soil", Type: "Concept"},
		{Name: "soil", Type: "Concept"},
		{Name: "Water", Type: "Resource"},
		{Name: "WATER ", Type: "Concept"},
		{Name: "Farmers", Type: "Group"},
	}
	once := Entities(in)
	twice := Entities(once)
	assert.Equal(t, once, twice)
}

func TestEntitiesDoesNotModifyInput(t *testing.T) {
	in := []types.Entity{{Name: "a", Type: "1"}, {Name: "A", Type: "2"}}
	_ = Entities(in)
	assert.Equal(t, []types.Entity{{Name: "a", Type: "1"}, {Name: "A", Type: "2"}}, in)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "soil health", Key("  Soil\t Health "))
	assert.Equal(t, "", Key(" \n "))
}
