// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/article-graph/internal/catalog"
	"github.com/pdiddy/article-graph/internal/extract"
	"github.com/pdiddy/article-graph/internal/fetch"
	"github.com/pdiddy/article-graph/internal/pipeline"
	"github.com/pdiddy/article-graph/internal/report"
)

func init() {
	f := rootCmd.Flags()
	f.String("out-dir", "", "directory for mermaid_<n>.md files (default \".\")")
	f.String("csv", "", "tag table path (default \"tags.csv\")")
	f.String("catalog", "", "also record results in this SQLite catalog")
	f.String("provider", "", "language-model API: openai or anthropic (default \"openai\")")
	f.String("model", "", "model identifier")

	for key, flag := range map[string]string{
		"output.diagram_dir": "out-dir",
		"output.csv_path":    "csv",
		"catalog.path":       "catalog",
		"ai.provider":        "provider",
		"ai.model":           "model",
	} {
		if err := viper.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// runPipeline processes every URL and prints the run report. Per-URL
// failures do not change the exit status.
func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := buildRunConfig(viper.GetViper(), args)

	if cfg.AI.APIKey == "" {
		logger.Warnw("no API key configured; every extraction will fail",
			"provider", cfg.AI.Provider)
	}

	backend, err := extract.NewBackend(cfg.AI, nil)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Fetcher:   fetch.New(nil, cfg.Fetch, logger),
		Extractor: extract.New(backend),
		Output:    cfg.Output,
		Log:       logger,
		Progress:  os.Stdout,
	}

	if cfg.Catalog.Path != "" {
		store, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		p.Catalog = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := p.Run(ctx, cfg.URLs)
	if len(summary.Results) > 0 {
		fmt.Fprintln(os.Stdout)
		report.Print(os.Stdout, summary.Results)
	}
	return err
}
