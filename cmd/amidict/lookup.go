// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/amidict/internal/lookup"
	"github.com/pdiddy/amidict/internal/wiki"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <term>",
	Short: "Look a term up on Wikidata",
	Long: `Lookup searches Wikidata for a term and prints the ranked candidates with
the primary Q-ID. Candidates whose description matches the blacklist
(disambiguation pages, scholarly articles and the like) are dropped.

With --text the readable text of the term's Wikipedia article is printed
instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().Bool("json", false, "output as JSON")
	lookupCmd.Flags().Bool("text", false, "print the Wikipedia article text")
	lookupCmd.Flags().Bool("strict", false, "fail when several candidates survive filtering")
	lookupCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	cfg := lookupConfig(cmd)

	g, closeFn, err := newGetter(cfg.HTTPConfig)
	if err != nil {
		return err
	}
	defer closeFn()
	l := lookup.New(wiki.NewClient(g, slog.Default()), cfg, slog.Default())

	ctx, cancel := commandContext()
	defer cancel()

	if text, _ := cmd.Flags().GetBool("text"); text {
		page, err := l.LookupWikipedia(ctx, term)
		if err != nil {
			return err
		}
		if page == nil {
			return fmt.Errorf("no Wikipedia article for %q", term)
		}
		body, err := page.ReadableText()
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\n\n%s\n", page.Title(), page.URL, body)
		return nil
	}

	strict, _ := cmd.Flags().GetBool("strict")
	r, err := l.Resolve(ctx, term, strict)
	if err != nil && !errors.Is(err, lookup.ErrAmbiguous) {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if jerr := lookup.FormatJSON(r, os.Stdout); jerr != nil {
			return jerr
		}
		return err
	}
	lookup.FormatTable(r, os.Stdout)
	return err
}
