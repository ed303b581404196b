// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the article-graph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/article-graph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// logger is built in PersistentPreRunE from --verbose.
var logger = zap.NewNop().Sugar()

// secretDefault returns fallback if it is set, or the secret value for key otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets.Get(key)
}

// rootCmd runs the pipeline. With no arguments it processes the built-in URL list.
var rootCmd = &cobra.Command{
	Use:   "article-graph [urls...]",
	Short: "Extract entities and relationships from articles into diagrams and a tag table",
	Long: `article-graph downloads article text from each URL, asks a language model
for the entities it mentions and the relationships between them, and writes:

  mermaid_<n>.md   one Mermaid graph per URL, numbered by input position
                   (an error graph when the URL could not be processed)
  tags.csv         one row per unique entity per URL (link, tag, tag_type)

URLs are taken from the arguments, then the "urls" list in the config file,
then a built-in list. The API key and base endpoint come from
ARTICLE_GRAPH_AI_API_KEY / ARTICLE_GRAPH_AI_BASE_URL, OPENAI_API_KEY /
OPENAI_API_BASE, or .secrets/llm-api-key and .secrets/llm-api-base.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		zl, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = zl.Sugar()

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			logger.Infow("loaded secrets", "keys", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runPipeline,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./article-graph.yaml or ~/.config/article-graph/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("article-graph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "article-graph"))
		}
	}

	viper.SetEnvPrefix("ARTICLE_GRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a development logger at debug level when verbose, and a
// production logger that only reports warnings otherwise. Both write to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Sampling = nil
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
