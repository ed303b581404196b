// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/article-graph/internal/diagram"
	"github.com/pdiddy/article-graph/internal/extract"
	"github.com/pdiddy/article-graph/internal/fetch"
	"github.com/pdiddy/article-graph/pkg/types"
)

// --- stubs ---

type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	text, ok := f.pages[url]
	if !ok {
		return "", fetch.ErrNoContent
	}
	return text, nil
}

type stubExtractor struct {
	byText map[string]extract.Extraction
	err    error
}

func (e *stubExtractor) Extract(_ context.Context, text string) (extract.Extraction, error) {
	if e.err != nil {
		return extract.Extraction{}, e.err
	}
	return e.byText[text], nil
}

type stubRecorder struct {
	got []types.Result
}

func (r *stubRecorder) Record(_ context.Context, results []types.Result) error {
	r.got = results
	return nil
}

const (
	u1 = "https://example.org/one"
	u2 = "https://example.org/two"
	u3 = "https://example.org/three"
)

func threeURLFixture() (*stubFetcher, *stubExtractor) {
	f := &stubFetcher{pages: map[string]string{
		u1: "article one",
		u3: "article three",
	}}
	e := &stubExtractor{byText: map[string]extract.Extraction{
		"article one": {
			Entities: []types.Entity{
				{Name: "Soil", Type: "Concept"},
				{Name: "soil", Type: "Concept"},
				{Name: "Water", Type: "Resource"},
			},
			Relationships: []types.Relationship{{Source: "Soil", Label: "holds", Target: "Water"}},
		},
		"article three": {
			Entities: []types.Entity{{Name: "Tramadol", Type: "Drug"}, {Name: "Pain"}},
		},
	}}
	return f, e
}

func newPipeline(t *testing.T, f Fetcher, e Extractor) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	return &Pipeline{
		Fetcher:   f,
		Extractor: e,
		Output: types.OutputConfig{
			DiagramDir: filepath.Join(dir, "diagrams"),
			CSVPath:    filepath.Join(dir, "tags.csv"),
		},
	}, dir
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func readDiagram(t *testing.T, p *Pipeline, index int) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.Output.DiagramDir, diagram.FileName("", index)))
	require.NoError(t, err)
	return string(data)
}

func isErrorDiagram(src string) bool {
	return strings.Contains(src, `error["Extraction failed`)
}

// --- tests ---

func TestRun_MiddleURLFails(t *testing.T) {
	f, e := threeURLFixture()
	p, _ := newPipeline(t, f, e)
	var progress bytes.Buffer
	p.Progress = &progress

	summary, err := p.Run(context.Background(), []string{u1, u2, u3})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Total())
	assert.True(t, summary.HasFailures())
	assert.Equal(t, []string{u1, u2, u3}, f.calls, "URLs processed in input order")

	for i := 1; i <= 3; i++ {
		src := readDiagram(t, p, i)
		assert.Equal(t, i == 2, isErrorDiagram(src), "diagram %d", i)
	}

	records := readCSV(t, p.Output.CSVPath)
	assert.Equal(t, [][]string{
		{"link", "tag", "tag_type"},
		{u1, "Soil", "Concept"},
		{u1, "Water", "Resource"},
		{u3, "Tramadol", "Drug"},
		{u3, "Pain", ""},
	}, records)
	assert.Equal(t, 4, summary.Rows)

	out := progress.String()
	assert.Contains(t, out, "failed    "+u2)
	assert.Contains(t, out, "extracted "+u1+" (2 entities, 1 relationships)")
}

func TestRun_DeduplicatesBeforeDiagramAndTable(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{u1: "soil"}}
	e := &stubExtractor{byText: map[string]extract.Extraction{
		"soil": {Entities: []types.Entity{{Name: "Soil", Type: "Concept"}, {Name: "soil", Type: "Concept"}}},
	}}
	p, _ := newPipeline(t, f, e)

	summary, err := p.Run(context.Background(), []string{u1})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	assert.Equal(t, []types.Entity{{Name: "Soil", Type: "Concept"}}, summary.Results[0].Entities)
	assert.Equal(t, 1, strings.Count(readDiagram(t, p, 1), `["Soil"]`))
	assert.Len(t, readCSV(t, p.Output.CSVPath), 2)
}

func TestRun_ExtractionFailureGivesErrorDiagram(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{u1: "text"}}
	e := &stubExtractor{err: extract.ErrAPIKeyRequired}
	p, _ := newPipeline(t, f, e)

	summary, err := p.Run(context.Background(), []string{u1})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1)
	res := summary.Results[0]
	assert.False(t, res.OK())
	assert.True(t, errors.Is(res.Err, extract.ErrAPIKeyRequired))
	assert.Contains(t, readDiagram(t, p, 1), "API key required")
	assert.Len(t, readCSV(t, p.Output.CSVPath), 1, "header only")
}

func TestRun_RecordsCatalog(t *testing.T) {
	f, e := threeURLFixture()
	p, _ := newPipeline(t, f, e)
	rec := &stubRecorder{}
	p.Catalog = rec

	_, err := p.Run(context.Background(), []string{u1, u2, u3})
	require.NoError(t, err)

	require.Len(t, rec.got, 3)
	assert.Equal(t, 2, rec.got[1].Index)
	assert.False(t, rec.got[1].OK())
}

func TestRun_CancelledBetweenURLs(t *testing.T) {
	f, e := threeURLFixture()
	p, _ := newPipeline(t, f, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := p.Run(ctx, []string{u1, u2})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Total())
	assert.Empty(t, f.calls)
}

func TestRun_LockedOutputDir(t *testing.T) {
	f, e := threeURLFixture()
	p, _ := newPipeline(t, f, e)
	require.NoError(t, os.MkdirAll(p.Output.DiagramDir, 0o755))

	held := flock.New(filepath.Join(p.Output.DiagramDir, lockName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	_, err = p.Run(context.Background(), []string{u1})
	require.ErrorIs(t, err, ErrLocked)
}

func TestRun_DiagramWriteFailurePropagates(t *testing.T) {
	f, e := threeURLFixture()
	p, dir := newPipeline(t, f, e)

	// A directory where the diagram file should go makes the write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(p.Output.DiagramDir, diagram.FileName("", 1)), 0o755))

	_, err := p.Run(context.Background(), []string{u1, u3})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "tags.csv"))
	assert.True(t, os.IsNotExist(statErr), "table is not written after a fatal error")
}

// TestRun_EndToEnd wires the real fetcher and extractor against local servers.
func TestRun_EndToEnd(t *testing.T) {
	article := `<html><body><nav>menu</nav><article><p>` +
		strings.Repeat("Crop rotation improves soil structure and fertility over many seasons. ", 5) +
		`</p></article></body></html>`

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(article))
	}))
	defer site.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"entities\":[{\"name\":\"Crop rotation\",\"type\":\"Process\"},{\"name\":\"Soil\",\"type\":\"Concept\"},{\"name\":\"soil\",\"type\":\"Concept\"}],\"relationships\":[{\"source\":\"Crop rotation\",\"label\":\"improves\",\"target\":\"Soil\"}]}"}}]}`))
	}))
	defer llm.Close()

	fetcher := fetch.New(site.Client(), types.FetchConfig{FallbackDomains: []string{}}, nil)
	backend := &extract.OpenAIBackend{APIKey: "k", BaseURL: llm.URL, Client: llm.Client()}
	p, _ := newPipeline(t, fetcher, extract.New(backend))

	urls := []string{site.URL + "/a", site.URL + "/missing", site.URL + "/c"}
	summary, err := p.Run(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, errors.Is(summary.Results[1].Err, fetch.ErrNoContent))

	first := readDiagram(t, p, 1)
	assert.Contains(t, first, `Crop_rotation -->|"improves"| Soil`)
	assert.True(t, isErrorDiagram(readDiagram(t, p, 2)))

	records := readCSV(t, p.Output.CSVPath)
	require.Len(t, records, 5)
	assert.Equal(t, []string{urls[0], "Crop rotation", "Process"}, records[1])
	assert.Equal(t, []string{urls[2], "Soil", "Concept"}, records[4])
}
