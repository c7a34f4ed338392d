// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/amidict/internal/httputil"
	"github.com/pdiddy/amidict/internal/sparql"
	"github.com/pdiddy/amidict/pkg/types"
)

var sparqlCmd = &cobra.Command{
	Use:   "sparql",
	Short: "Copy SPARQL result values into dictionary entries",
	Long: `Sparql runs a query against a SPARQL endpoint, or reads a saved results
XML file, and for every row adds the value of --sparql-name as a
<dict-name> child of the entry whose Wikidata ID is the trailing segment of
the --id-name binding. Rows without an ID, without a matching entry or
with a blank value are skipped and counted.`,
	RunE: runSPARQL,
}

func init() {
	sparqlCmd.Flags().String("dict", "", "dictionary file or http(s) URL (.xml or .html)")
	sparqlCmd.Flags().StringP("out", "o", "", "output path (default: overwrite --dict)")
	sparqlCmd.Flags().String("query", "", "file holding the SPARQL query")
	sparqlCmd.Flags().String("results", "", "saved SPARQL results XML (instead of --query)")
	sparqlCmd.Flags().String("endpoint", "", "SPARQL endpoint (default https://query.wikidata.org/sparql)")
	sparqlCmd.Flags().String("id-name", "item", "result variable holding the entity URI")
	sparqlCmd.Flags().String("sparql-name", "", "result variable holding the value")
	sparqlCmd.Flags().String("dict-name", "", "element name the value is stored under")
	sparqlCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(sparqlCmd)
}

func runSPARQL(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("dict")
	d, err := loadDictionary(cmd, path)
	if err != nil {
		return err
	}
	out, err := outputPath(cmd, path)
	if err != nil {
		return err
	}

	var m sparql.Mapping
	m.IDName, _ = cmd.Flags().GetString("id-name")
	m.SparqlName, _ = cmd.Flags().GetString("sparql-name")
	m.DictName, _ = cmd.Flags().GetString("dict-name")
	if m.DictName == "" {
		m.DictName = m.SparqlName
	}
	if err := m.Validate(); err != nil {
		return err
	}

	data, err := sparqlResults(cmd)
	if err != nil {
		return err
	}
	res, err := sparql.ParseResults(data)
	if err != nil {
		return err
	}

	summary, err := sparql.ApplyUpdate(d, res, m, slog.Default())
	if err != nil {
		return err
	}
	summary.Print(os.Stdout)

	if summary.Applied > 0 {
		d.BumpVersion()
		if err := d.Save(out); err != nil {
			return err
		}
		fmt.Printf("wrote %s (version %s)\n", out, d.Version)
	}
	return nil
}

// sparqlResults reads --results, or runs the --query file.
func sparqlResults(cmd *cobra.Command) ([]byte, error) {
	if results, _ := cmd.Flags().GetString("results"); results != "" {
		return os.ReadFile(results)
	}
	queryPath, _ := cmd.Flags().GetString("query")
	if queryPath == "" {
		return nil, fmt.Errorf("provide --query or --results")
	}
	query, err := os.ReadFile(queryPath)
	if err != nil {
		return nil, fmt.Errorf("reading query: %w", err)
	}

	cfg := types.SPARQLConfig{HTTPConfig: httpConfig(cmd)}
	cfg.Endpoint, _ = cmd.Flags().GetString("endpoint")
	if cfg.Endpoint == "" {
		cfg.Endpoint = viper.GetString("sparql.endpoint")
	}
	f := httputil.NewFetcher(cfg.HTTPConfig, slog.Default())

	ctx, cancel := commandContext()
	defer cancel()
	return sparql.RunQuery(ctx, f, cfg.Endpoint, string(query))
}
