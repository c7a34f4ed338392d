// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/amidict/internal/enrich"
	"github.com/pdiddy/amidict/internal/fileutil"
)

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Search Wikidata for entries that lack an ID",
	Long: `Missing searches Wikidata for every entry without a Wikidata ID and writes
the filtered candidates as YAML, keyed by the searched string, for manual
curation. The dictionary itself is not changed.`,
	RunE: runMissing,
}

func init() {
	missingCmd.Flags().String("dict", "", "dictionary file or http(s) URL (.xml or .html)")
	missingCmd.Flags().StringP("out", "o", "", "YAML output path (default: stdout)")
	missingCmd.Flags().String("field", "name", "entry field to search with: name or term")
	missingCmd.Flags().Int("max", 0, "search at most this many entries (0 means all)")
	addLookupFlags(missingCmd)

	rootCmd.AddCommand(missingCmd)
}

func runMissing(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("dict")
	d, err := loadDictionary(cmd, path)
	if err != nil {
		return err
	}
	fieldName, _ := cmd.Flags().GetString("field")
	field, err := enrich.ParseLookupField(fieldName)
	if err != nil {
		return err
	}
	maxEntries, _ := cmd.Flags().GetInt("max")

	en, closeFn, err := newEnricher(lookupConfig(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	hits, err := en.MissingWikidataIDs(ctx, d, field, maxEntries)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return hits.WriteYAML(os.Stdout)
	}
	if err := fileutil.WriteAtomic(out, func(w io.Writer) error { return hits.WriteYAML(w) }); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d entries searched)\n", out, len(hits))
	return nil
}
