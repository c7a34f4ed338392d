// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/pkg/dictionary"
	"github.com/pdiddy/amidict/pkg/types"
)

// BatchResult holds the outcome of an EnrichAll run.
type BatchResult struct {
	Enriched int
	Deferred int
	NotFound int
	Skipped  int
	Failed   int
}

// Total returns the number of entries processed.
func (r BatchResult) Total() int {
	return r.Enriched + r.Deferred + r.NotFound + r.Skipped + r.Failed
}

// HasFailures reports whether any entry failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// EnrichAll enriches every entry of d from the enabled sources, in the
// order Wikipedia, Wikidata, Wiktionary. A deferred entry is not sent to
// Wikidata. Each entry is enriched on a copy that replaces the original
// only when all its lookups succeed. Entries are separated by Delay and the
// context is checked between them; on cancellation the entries done so far
// keep their data and the context error is returned.
func (en *Enricher) EnrichAll(ctx context.Context, d *dictionary.Dictionary, src types.Sources, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if !src.Any() {
		return result, nil
	}
	for i, e := range d.Entries() {
		if i > 0 {
			if err := en.wait(ctx, en.Delay); err != nil {
				en.summary(w, result)
				return result, err
			}
		}
		if !en.Replace && complete(e, src) {
			fmt.Fprintf(w, "skipped: %s (already enriched)\n", e.Term)
			result.Skipped++
			continue
		}

		c := e.Clone()
		changed, deferred, err := en.enrichEntry(ctx, c, src)
		if err != nil {
			if ctx.Err() != nil {
				en.summary(w, result)
				return result, ctx.Err()
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", e.Term, err)
			result.Failed++
			continue
		}
		*e = *c

		switch {
		case deferred:
			fmt.Fprintf(w, "deferred: %s %s\n", e.Term, e.Raw)
			result.Deferred++
		case len(changed) > 0:
			fmt.Fprintf(w, "enriched: %s (%s)\n", e.Term, strings.Join(changed, ", "))
			result.Enriched++
		default:
			fmt.Fprintf(w, "not found: %s\n", e.Term)
			result.NotFound++
		}
	}
	en.summary(w, result)
	return result, nil
}

func (en *Enricher) summary(w io.Writer, r BatchResult) {
	fmt.Fprintf(w, "\nBatch summary: %d enriched, %d deferred, %d not found, %d skipped, %d failed (total: %d)\n",
		r.Enriched, r.Deferred, r.NotFound, r.Skipped, r.Failed, r.Total())
}

// enrichEntry runs the enabled sources against e and names the ones that
// changed it.
func (en *Enricher) enrichEntry(ctx context.Context, e *dictionary.Entry, src types.Sources) (changed []string, deferred bool, err error) {
	if src.Wikipedia {
		out, err := en.AddWikipedia(ctx, e)
		if err != nil {
			return nil, false, fmt.Errorf("wikipedia: %w", err)
		}
		switch out {
		case WikipediaAdded:
			changed = append(changed, "wikipedia")
		case WikipediaDeferred:
			deferred = true
		}
	}
	if src.Wikidata && !deferred {
		ok, err := en.AddWikidata(ctx, e)
		if err != nil {
			return nil, false, fmt.Errorf("wikidata: %w", err)
		}
		if ok {
			changed = append(changed, "wikidata")
		}
	}
	if src.Wiktionary {
		ok, err := en.AddWiktionary(ctx, e)
		if err != nil {
			return nil, false, fmt.Errorf("wiktionary: %w", err)
		}
		if ok {
			changed = append(changed, "wiktionary")
		}
	}
	return changed, deferred, nil
}

// complete reports whether e already holds data from every enabled source.
func complete(e *dictionary.Entry, src types.Sources) bool {
	if src.Wikipedia && e.LeadParagraph() == nil && e.Raw == nil {
		return false
	}
	if src.Wikidata && !dictionary.IsValidWikidataID(e.WikidataID) {
		return false
	}
	if src.Wiktionary && !hasDefinitions(e) {
		return false
	}
	return true
}

func hasDefinitions(e *dictionary.Entry) bool {
	for _, n := range e.Content {
		if n.Type != html.ElementNode {
			continue
		}
		for _, c := range strings.Fields(dom.ClassName(n)) {
			if c == dictionary.DefinitionsClass {
				return true
			}
		}
	}
	return false
}
