// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/article-graph/pkg/types"
)

func sampleResults() []types.Result {
	return []types.Result{
		{
			Index: 1, URL: "https://a.example/1",
			Entities: []types.Entity{{Name: "Soil", Type: "Concept"}, {Name: "FAO", Type: "Organization"}},
		},
		types.Failed(2, "https://b.example/2", errors.New("fetch failed")),
		{
			Index: 3, URL: "https://c.example/3",
			Entities: []types.Entity{{Name: "Tramadol", Type: ""}},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleResults())

	want := []types.Row{
		{URL: "https://a.example/1", EntityName: "Soil", EntityType: "Concept"},
		{URL: "https://a.example/1", EntityName: "FAO", EntityType: "Organization"},
		{URL: "https://c.example/3", EntityName: "Tramadol", EntityType: ""},
	}
	assert.Equal(t, want, rows)
}

func TestEncode_QuotesFields(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []types.Row{{URL: "u", EntityName: `Smith, "J."`, EntityType: "Person"}})
	require.NoError(t, err)

	assert.Equal(t, "link,tag,tag_type\nu,\"Smith, \"\"J.\"\"\",Person\n", buf.String())
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tags.csv")

	n, err := WriteCSV(path, sampleResults())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"https://c.example/3", "Tramadol", ""}, records[3])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestWriteCSV_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents\n"), 0o644))

	n, err := WriteCSV(path, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "link,tag,tag_type\n", string(data))
}
