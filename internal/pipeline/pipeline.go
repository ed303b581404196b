// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs fetch → extract → deduplicate → diagram for each
// input URL in order, then writes the tag table once for the whole run.
//
// A fetch or extraction failure affects only its own URL: the URL gets an
// error diagram and no table rows, and the loop moves on. Filesystem errors
// end the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/pdiddy/article-graph/internal/dedup"
	"github.com/pdiddy/article-graph/internal/diagram"
	"github.com/pdiddy/article-graph/internal/export"
	"github.com/pdiddy/article-graph/internal/extract"
	"github.com/pdiddy/article-graph/pkg/types"
)

// lockName is created in the diagram directory for the length of a run.
const lockName = ".article-graph.lock"

// ErrLocked is returned when another run holds the output directory.
var ErrLocked = errors.New("another run is writing to the output directory")

// Fetcher retrieves article text for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns article text into entities and relationships.
type Extractor interface {
	Extract(ctx context.Context, text string) (extract.Extraction, error)
}

// Recorder persists the run's results after the tag table is written.
type Recorder interface {
	Record(ctx context.Context, results []types.Result) error
}

// Pipeline holds the collaborators for a run. Catalog, Log, and Progress
// are optional.
type Pipeline struct {
	Fetcher   Fetcher
	Extractor Extractor
	Output    types.OutputConfig
	Catalog   Recorder
	Log       *zap.SugaredLogger
	Progress  io.Writer
}

// Summary holds the outcome of a run.
type Summary struct {
	Succeeded int
	Failed    int
	Rows      int
	Results   []types.Result
}

// Total returns the number of URLs processed.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any URL failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run processes urls sequentially in input order. It returns an error only
// for a held output lock, a cancelled context (checked between URLs), or a
// failed write; per-URL fetch and extraction failures are reported through
// the Summary.
func (p *Pipeline) Run(ctx context.Context, urls []string) (Summary, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w := p.Progress
	if w == nil {
		w = io.Discard
	}
	dir := p.Output.DiagramDir
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquiring output lock: %w", err)
	}
	if !locked {
		return Summary{}, ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	var summary Summary

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res := p.process(ctx, i+1, u, w)

		path, err := diagram.Write(dir, p.Output.DiagramPrefix, res)
		if err != nil {
			return summary, err
		}

		if res.OK() {
			summary.Succeeded++
			fmt.Fprintf(w, "extracted %s (%d entities, %d relationships) -> %s\n",
				u, len(res.Entities), len(res.Relationships), filepath.Base(path))
			log.Infow("url processed", "index", res.Index, "url", u,
				"entities", len(res.Entities), "relationships", len(res.Relationships), "diagram", path)
		} else {
			summary.Failed++
			fmt.Fprintf(w, "failed    %s: %v\n", u, res.Err)
			log.Warnw("url failed", "index", res.Index, "url", u, "error", res.Err, "diagram", path)
		}
		summary.Results = append(summary.Results, res)
	}

	csvPath := p.Output.CSVPath
	if csvPath == "" {
		csvPath = export.DefaultPath
	}
	n, err := export.WriteCSV(csvPath, summary.Results)
	if err != nil {
		return summary, err
	}
	summary.Rows = n
	fmt.Fprintf(w, "wrote %s (%d rows)\n", csvPath, n)
	log.Infow("tag table written", "path", csvPath, "rows", n)

	if p.Catalog != nil {
		if err := p.Catalog.Record(ctx, summary.Results); err != nil {
			return summary, fmt.Errorf("recording catalog: %w", err)
		}
	}

	return summary, nil
}

// process fetches, extracts, and deduplicates one URL. It never returns an
// error; failures are carried in the Result.
func (p *Pipeline) process(ctx context.Context, index int, url string, w io.Writer) types.Result {
	fmt.Fprintf(w, "fetching  %s\n", url)

	text, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return types.Failed(index, url, fmt.Errorf("fetch: %w", err))
	}

	ex, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		return types.Failed(index, url, fmt.Errorf("extract: %w", err))
	}

	return types.Result{
		Index:         index,
		URL:           url,
		Entities:      dedup.Entities(ex.Entities),
		Relationships: ex.Relationships,
	}
}
