// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var disambiguateCmd = &cobra.Command{
	Use:   "disambiguate",
	Short: "Resolve deferred entries by Wikidata description",
	Long: `Disambiguate visits entries without a Wikidata ID. Entries deferred from a
disambiguation page carry candidate IDs; the candidate whose label matches
the entry, or failing that the first whose description is allowed, is
chosen. Entries with no acceptable candidate are marked NOT_FOUND and are
not visited again.`,
	RunE: runDisambiguate,
}

func init() {
	disambiguateCmd.Flags().String("dict", "", "dictionary file or http(s) URL (.xml or .html)")
	disambiguateCmd.Flags().StringP("out", "o", "", "output path (default: overwrite --dict)")
	addLookupFlags(disambiguateCmd)

	rootCmd.AddCommand(disambiguateCmd)
}

func runDisambiguate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("dict")
	d, err := loadDictionary(cmd, path)
	if err != nil {
		return err
	}
	out, err := outputPath(cmd, path)
	if err != nil {
		return err
	}

	en, closeFn, err := newEnricher(lookupConfig(cmd))
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := commandContext()
	defer cancel()

	var changed, failed int
	for _, e := range d.EntriesWithoutWikidataID() {
		if ctx.Err() != nil {
			break
		}
		ok, err := en.DisambiguateByDescription(ctx, e)
		switch {
		case err != nil:
			fmt.Printf("failed:  %s (%v)\n", e.Term, err)
			failed++
		case !ok:
		case e.IsNotFound():
			fmt.Printf("not found: %s\n", e.Term)
			changed++
		default:
			fmt.Printf("resolved: %s %s\n", e.Term, e.WikidataID)
			changed++
		}
	}
	fmt.Printf("\nDisambiguation summary: %d changed, %d failed\n", changed, failed)

	if changed > 0 {
		d.BumpVersion()
		if err := d.Save(out); err != nil {
			return err
		}
		fmt.Printf("wrote %s (version %s)\n", out, d.Version)
	}
	if failed > 0 {
		return fmt.Errorf("%d entr(ies) failed disambiguation", failed)
	}
	return ctx.Err()
}
