// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/article-graph/internal/catalog"
)

const defaultCatalogPath = "article-graph.db"

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query or export the SQLite result catalog",
	Long: `Catalog reads the database written when article-graph runs with
--catalog. Use subcommands to list recorded entities or export everything.`,
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded entities with optional filters",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	q := catalog.Query{}
	q.Type, _ = cmd.Flags().GetString("type")
	q.URL, _ = cmd.Flags().GetString("url")
	q.Name, _ = cmd.Flags().GetString("name")
	q.Limit, _ = cmd.Flags().GetInt("limit")

	rows, err := store.Entities(context.Background(), q)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No entities found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-32s  %-16s  %s\n", "Entity", "Type", "URL")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range rows {
		name := r.EntityName
		if len(name) > 32 {
			name = name[:29] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-32s  %-16s  %s\n", name, r.EntityType, r.URL)
	}
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	ctx := context.Background()
	switch format {
	case "yaml":
		if out == "" {
			out = "catalog.yaml"
		}
		err = store.ExportYAML(ctx, out)
	case "json":
		if out == "" {
			out = "catalog.json"
		}
		err = store.ExportJSON(ctx, out)
	default:
		return fmt.Errorf("invalid format %q: must be yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported catalog to %s\n", out)
	return nil
}

// openCatalog opens --db, falling back to catalog.path from config and then
// the default file. A missing database is an error rather than created empty.
func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	path = firstSet(path, viper.GetString("catalog.path"), defaultCatalogPath)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog.Open(path)
}

func init() {
	catalogCmd.PersistentFlags().String("db", "", "catalog database (default: catalog.path from config, then article-graph.db)")

	catalogListCmd.Flags().String("type", "", "filter by entity type (case-insensitive)")
	catalogListCmd.Flags().String("url", "", "filter by source URL")
	catalogListCmd.Flags().String("name", "", "filter by entity name substring")
	catalogListCmd.Flags().Int("limit", 0, "maximum number of rows (default 100, -1 for all)")
	catalogListCmd.Flags().Bool("json", false, "output rows as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("out", "", "output file (default catalog.yaml or catalog.json)")

	catalogCmd.AddCommand(catalogListCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
