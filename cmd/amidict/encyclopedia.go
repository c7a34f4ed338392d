// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/amidict/internal/encyclopedia"
	"github.com/pdiddy/amidict/pkg/dictionary"
)

var encyclopediaCmd = &cobra.Command{
	Use:   "encyclopedia",
	Short: "Group entries sharing a Wikidata ID into concepts",
	Long: `Encyclopedia groups the entries of a dictionary by Wikidata ID and writes
one block per concept, with the first entry's term as canonical term and
every surface form in a synonym list. Entries without a usable ID are
counted but not grouped.

With --auto-lookup, entries without an ID get one from their Wikipedia
page (wikipedia_page, else the first /wiki/ link in their content) or,
failing that, from a Wikidata search for the term. The source dictionary
is not changed.

With --merged the grouped entries are also folded into single entries and
written as a dictionary.`,
	RunE: runEncyclopedia,
}

func init() {
	encyclopediaCmd.Flags().String("dict", "", "dictionary file or http(s) URL (.xml or .html)")
	encyclopediaCmd.Flags().StringP("out", "o", "", "encyclopedia HTML output path")
	encyclopediaCmd.Flags().String("merged", "", "write the merged dictionary to this path")
	encyclopediaCmd.Flags().String("stats", "", "print statistics: text, yaml or json")
	encyclopediaCmd.Flags().Bool("auto-lookup", false, "resolve missing Wikidata IDs over the network")
	encyclopediaCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	encyclopediaCmd.Flags().Duration("delay", 0, "delay between lookups (default 1s)")

	rootCmd.AddCommand(encyclopediaCmd)
}

func runEncyclopedia(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("dict")
	if path == "" {
		return fmt.Errorf("--dict is required")
	}
	enc, err := loadEncyclopedia(cmd, path)
	if err != nil {
		return err
	}
	if auto, _ := cmd.Flags().GetBool("auto-lookup"); auto {
		cfg := lookupConfig(cmd)
		l, closeFn, err := newLookup(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		ctx, cancel := commandContext()
		defer cancel()
		n, err := enc.ResolveMissingIDs(ctx, l, cfg.Delay)
		fmt.Printf("resolved %d missing Wikidata ID(s)\n", n)
		if err != nil {
			return err
		}
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := enc.SaveNormalizedHTML(out); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d concepts)\n", out, len(enc.Concepts()))
	}
	for _, c := range enc.Conflicts() {
		fmt.Fprintf(os.Stderr, "warning: %s has %d Wikipedia URLs, kept %s\n", c.WikidataID, len(c.URLs), c.URLs[0])
	}

	stats := enc.Statistics()
	if merged, _ := cmd.Flags().GetString("merged"); merged != "" {
		d, err := enc.Merge().Dictionary()
		if err != nil {
			return err
		}
		if err := d.Save(merged); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d entries)\n", merged, d.Len())
	}

	format, _ := cmd.Flags().GetString("stats")
	switch format {
	case "":
		return nil
	case "text":
		stats.FormatText(os.Stdout)
		return nil
	case "yaml":
		return stats.WriteYAML(os.Stdout)
	case "json":
		return stats.WriteJSON(os.Stdout)
	}
	return fmt.Errorf("unknown stats format %q (want text, yaml or json)", format)
}

func loadEncyclopedia(cmd *cobra.Command, path string) (*encyclopedia.Encyclopedia, error) {
	if !dictionary.IsURL(path) {
		return encyclopedia.Load(path, slog.Default())
	}
	g, closeFn, err := newGetter(httpConfig(cmd))
	if err != nil {
		return nil, err
	}
	defer closeFn()
	ctx, cancel := commandContext()
	defer cancel()
	return encyclopedia.LoadURL(ctx, g, path, slog.Default())
}
