// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/amidict/internal/annotate"
	"github.com/pdiddy/amidict/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Link dictionary terms in an HTML file",
	Long: `Annotate wraps every occurrence of a dictionary term in the paragraphs of
an HTML file in <a class="annotation"> linking to the entry's Wikidata
item. Longer terms win over terms they contain, text inside existing links
is left alone, and the text content of the document is unchanged.

An index page lists, per term, the paragraphs it was found in. Paragraphs
without an id are annotated but not indexed.`,
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("dict", "", "dictionary file or http(s) URL (.xml or .html)")
	annotateCmd.Flags().String("in", "", "HTML file to annotate")
	annotateCmd.Flags().StringP("out", "o", "", "annotated HTML output path")
	annotateCmd.Flags().String("index", "", "index page path (default: index.html beside --out)")
	annotateCmd.Flags().String("selector", "", "CSS selector for annotated blocks (default p)")
	annotateCmd.Flags().Bool("regex", false, "read terms as regular expressions")
	annotateCmd.Flags().Bool("counts", false, "print per-term counts")

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	if in == "" || out == "" {
		return fmt.Errorf("--in and --out are required")
	}
	path, _ := cmd.Flags().GetString("dict")
	d, err := loadDictionary(cmd, path)
	if err != nil {
		return err
	}

	cfg := types.AnnotateConfig{
		ParagraphSelector: viper.GetString("annotate.paragraph_selector"),
		Regex:             viper.GetBool("annotate.regex"),
	}
	if s, _ := cmd.Flags().GetString("selector"); s != "" {
		cfg.ParagraphSelector = s
	}
	if r, _ := cmd.Flags().GetBool("regex"); r {
		cfg.Regex = true
	}
	cfg.IndexPath, _ = cmd.Flags().GetString("index")
	if cfg.IndexPath == "" {
		cfg.IndexPath = annotate.DefaultIndexPath(out)
	}

	a, err := annotate.New(annotate.PhrasesFromDictionary(d), annotate.Options{
		Regex:             cfg.Regex,
		ParagraphSelector: cfg.ParagraphSelector,
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("dictionary %s: %w", d.Title, err)
	}

	res, err := a.AnnotateFile(in, out, cfg.IndexPath)
	if err != nil {
		return err
	}
	fmt.Printf("annotated %s: %d annotations in %d paragraphs, %d terms\n",
		out, res.Annotations, res.Paragraphs, len(res.Counts))
	fmt.Printf("index: %s\n", cfg.IndexPath)

	if counts, _ := cmd.Flags().GetBool("counts"); counts {
		return annotate.WriteCounts(os.Stdout, res.Counts)
	}
	return nil
}
