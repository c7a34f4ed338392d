// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/amidict/pkg/dictionary"
	"github.com/pdiddy/amidict/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build [terms...]",
	Short: "Build a dictionary from a word list and enrich it",
	Long: `Build creates a dictionary from terms given as arguments, read from a
word file (one term per line) or taken from one column of a CSV file
(--csv with --column naming the header), optionally enriches every entry from
Wikipedia, Wikidata and Wiktionary, and writes it as XML or, for .html
output paths, as semantic HTML.

Entries that already carry data are skipped unless --replace is set. A
failed entry is left unchanged and reported; the dictionary is still
written.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("words", "", "word file, one term per line")
	buildCmd.Flags().String("csv", "", "CSV file holding the terms in one column")
	buildCmd.Flags().String("column", "", "CSV header of the term column (with --csv)")
	buildCmd.Flags().String("title", "", "dictionary title (default: derived from the input file name)")
	buildCmd.Flags().StringP("out", "o", "", "output dictionary path (.xml or .html)")
	buildCmd.Flags().Int("max", 0, "read at most this many terms (0 means all)")
	buildCmd.Flags().String("duplicates", "ignore", "duplicate term policy: ignore, replace, error")
	buildCmd.Flags().Bool("wikipedia", false, "add lead paragraph, figure and page link from Wikipedia")
	buildCmd.Flags().Bool("wikidata", false, "add Wikidata ID, description and sitelinks")
	buildCmd.Flags().Bool("wiktionary", false, "add Wiktionary definitions")
	addLookupFlags(buildCmd)

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	words, _ := cmd.Flags().GetString("words")
	csvPath, _ := cmd.Flags().GetString("csv")
	if words == "" && csvPath == "" && len(args) == 0 {
		return fmt.Errorf("provide terms as arguments, a --words file or a --csv file")
	}
	if words != "" && csvPath != "" {
		return fmt.Errorf("--words and --csv are mutually exclusive")
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return fmt.Errorf("--out is required")
	}
	policyName, _ := cmd.Flags().GetString("duplicates")
	policy, err := dictionary.ParseDuplicatePolicy(policyName)
	if err != nil {
		return err
	}

	cfg := types.BuildConfig{LookupConfig: lookupConfig(cmd), OutPath: out}
	cfg.Title, _ = cmd.Flags().GetString("title")
	cfg.MaxEntries, _ = cmd.Flags().GetInt("max")
	cfg.Sources.Wikipedia, _ = cmd.Flags().GetBool("wikipedia")
	cfg.Sources.Wikidata, _ = cmd.Flags().GetBool("wikidata")
	cfg.Sources.Wiktionary, _ = cmd.Flags().GetBool("wiktionary")

	opts := dictionary.Options{Duplicates: policy}
	var d *dictionary.Dictionary
	switch {
	case words != "":
		d, err = dictionary.FromWordFile(words, cfg.Title, cfg.MaxEntries, opts)
	case csvPath != "":
		d, err = csvDictionary(cmd, csvPath, cfg, opts)
	default:
		terms := args
		if cfg.MaxEntries > 0 && len(terms) > cfg.MaxEntries {
			terms = terms[:cfg.MaxEntries]
		}
		if cfg.Title == "" {
			cfg.Title = dictionary.TitleFromPath(out)
		}
		d, err = dictionary.FromTerms(terms, cfg.Title, opts)
	}
	if err != nil {
		return err
	}

	var failed int
	if cfg.Sources.Any() {
		en, closeFn, err := newEnricher(cfg.LookupConfig)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext()
		defer cancel()
		res, err := en.EnrichAll(ctx, d, cfg.Sources, os.Stdout)
		failed = res.Failed
		if err != nil {
			fmt.Fprintf(os.Stderr, "enrichment stopped: %v\n", err)
		}
	}

	if err := d.Save(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d entries)\n", out, d.Len())

	if failed > 0 {
		return fmt.Errorf("%d entr(ies) failed enrichment", failed)
	}
	return nil
}

// csvDictionary builds the dictionary from the --column cells of a CSV
// file, capped at cfg.MaxEntries.
func csvDictionary(cmd *cobra.Command, path string, cfg types.BuildConfig, opts dictionary.Options) (*dictionary.Dictionary, error) {
	column, _ := cmd.Flags().GetString("column")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	terms, err := dictionary.ReadCSVColumn(f, column)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if cfg.MaxEntries > 0 && len(terms) > cfg.MaxEntries {
		terms = terms[:cfg.MaxEntries]
	}
	title := cfg.Title
	if title == "" {
		title = dictionary.TitleFromPath(path)
	}
	return dictionary.FromTerms(terms, title, opts)
}
