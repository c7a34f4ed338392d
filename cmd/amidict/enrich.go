// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/amidict/pkg/types"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich an existing dictionary from Wikimedia sources",
	Long: `Enrich loads a dictionary, adds data from the selected sources to each
entry and writes it back with the patch version bumped. Without --out the
input file is replaced.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("dict", "", "dictionary file or http(s) URL (.xml or .html)")
	enrichCmd.Flags().StringP("out", "o", "", "output path (default: overwrite --dict)")
	enrichCmd.Flags().Bool("wikipedia", false, "add lead paragraph, figure and page link from Wikipedia")
	enrichCmd.Flags().Bool("wikidata", false, "add Wikidata ID, description and sitelinks")
	enrichCmd.Flags().Bool("wiktionary", false, "add Wiktionary definitions")
	addLookupFlags(enrichCmd)

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("dict")
	d, err := loadDictionary(cmd, path)
	if err != nil {
		return err
	}
	out, err := outputPath(cmd, path)
	if err != nil {
		return err
	}

	var src types.Sources
	src.Wikipedia, _ = cmd.Flags().GetBool("wikipedia")
	src.Wikidata, _ = cmd.Flags().GetBool("wikidata")
	src.Wiktionary, _ = cmd.Flags().GetBool("wiktionary")
	if !src.Any() {
		return fmt.Errorf("select at least one of --wikipedia, --wikidata, --wiktionary")
	}

	en, closeFn, err := newEnricher(lookupConfig(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()
	res, err := en.EnrichAll(ctx, d, src, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enrichment stopped: %v\n", err)
	}

	d.BumpVersion()
	if err := d.Save(out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (version %s)\n", out, d.Version)

	if res.HasFailures() {
		return fmt.Errorf("%d entr(ies) failed enrichment", res.Failed)
	}
	return nil
}
