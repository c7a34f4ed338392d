// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/amidict/pkg/dictionary"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check dictionaries against the schema rules",
	Long: `Validate loads each XML or HTML dictionary and reports every schema
violation: missing title, malformed version or Wikidata ID, unknown
attributes or children, and terms that collide under the case-insensitive
key. Wikidata IDs shared by several entries are reported as warnings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, path := range args {
		d, err := dictionary.Load(path, dictionary.Options{})
		if err != nil {
			fmt.Printf("invalid: %s (%v)\n", path, err)
			invalid++
			continue
		}
		for qid, terms := range d.DuplicateWikidataIDs() {
			fmt.Printf("warning: %s shared by %v\n", qid, terms)
		}
		if err := d.Validate(); err != nil {
			var ve *dictionary.ValidationError
			if errors.As(err, &ve) {
				fmt.Printf("invalid: %s (%d violations)\n", path, len(ve.Violations))
				for _, v := range ve.Violations {
					fmt.Printf("  %s\n", v)
				}
			} else {
				fmt.Printf("invalid: %s (%v)\n", path, err)
			}
			invalid++
			continue
		}
		fmt.Printf("valid:   %s (%d entries, version %s)\n", path, d.Len(), d.Version)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d dictionar(ies) invalid", invalid, len(args))
	}
	return nil
}
