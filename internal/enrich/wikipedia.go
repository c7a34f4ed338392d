// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"strings"

	"github.com/pdiddy/amidict/internal/wiki"
	"github.com/pdiddy/amidict/pkg/dictionary"
)

// WikipediaOutcome says what AddWikipedia did with an entry.
type WikipediaOutcome int

const (
	// WikipediaNone means no usable page was found.
	WikipediaNone WikipediaOutcome = iota
	// WikipediaAdded means the lead paragraph and page data were attached.
	WikipediaAdded
	// WikipediaDeferred means the term landed on a disambiguation page;
	// its Wikidata candidates were stored under raw and no Q-ID was set.
	WikipediaDeferred
	// WikipediaSkipped means the page was a list or unrecognised page, or a
	// disambiguation page for an entry that already has a Q-ID.
	WikipediaSkipped
)

func (o WikipediaOutcome) String() string {
	switch o {
	case WikipediaAdded:
		return "added"
	case WikipediaDeferred:
		return "deferred"
	case WikipediaSkipped:
		return "skipped"
	}
	return "none"
}

// AddWikipedia fetches the Wikipedia page for the entry's term. For an
// article it attaches the lead paragraph and figure, adds the bold terms of
// the lead as English synonyms, and fills the page URL, Q-ID and
// description when they are empty. A disambiguation page defers the entry:
// the Wikidata candidates for the term go under raw for later curation.
func (en *Enricher) AddWikipedia(ctx context.Context, e *dictionary.Entry) (WikipediaOutcome, error) {
	page, err := en.Lookup.LookupWikipedia(ctx, e.Term)
	if err != nil || page == nil {
		return WikipediaNone, err
	}

	pt := page.PageType(ctx)
	if err := ctx.Err(); err != nil {
		return WikipediaNone, err
	}
	switch {
	case pt == wiki.PageDisambiguation:
		return en.deferEntry(ctx, e, page)
	case !pt.Acceptable():
		en.logger().Info("wikipedia page not usable", "term", e.Term, "type", string(pt), "url", page.URL)
		return WikipediaSkipped, nil
	}

	lead := page.LeadParagraph()
	fig := page.FigureBlock()
	qid := page.WikidataItemID()
	var central string
	if info, err := page.BasicInfo(ctx); err == nil && info != nil {
		if qid == "" {
			qid = info.WikidataItemID()
		}
		central = info.CentralDescription()
	} else if ctx.Err() != nil {
		return WikipediaNone, ctx.Err()
	}

	if lead == nil {
		en.logger().Info("wikipedia page has no lead paragraph", "term", e.Term, "url", page.URL)
	} else {
		e.AddContent(lead)
		for _, b := range wiki.Bolds(lead) {
			if !strings.EqualFold(b, e.Term) && !strings.EqualFold(b, e.Name) {
				e.AddSynonym("en", b)
			}
		}
	}
	e.AddContent(fig)
	if e.WikipediaPage == "" {
		e.WikipediaPage = page.URL
	}
	if !dictionary.IsValidWikidataID(e.WikidataID) && qid != "" {
		if err := e.SetWikidataID(qid); err != nil {
			en.logger().Warn("ignoring page wikidata id", "term", e.Term, "qid", qid, "error", err)
		}
	}
	if e.Description == "" && central != "" {
		e.Description = central
	}
	return WikipediaAdded, nil
}

// deferEntry stores the Wikidata candidates of a term that landed on a
// disambiguation page. An entry that already holds a valid Q-ID is left as
// it is and reported skipped. With neither candidates nor a page item there
// is nothing to curate later, so the entry counts as not found.
func (en *Enricher) deferEntry(ctx context.Context, e *dictionary.Entry, page *wiki.WikipediaPage) (WikipediaOutcome, error) {
	if dictionary.IsValidWikidataID(e.WikidataID) {
		en.logger().Info("disambiguation page, keeping existing wikidata id", "term", e.Term, "qid", e.WikidataID, "url", page.URL)
		return WikipediaSkipped, nil
	}
	r, err := en.Lookup.Lookup(ctx, e.Term)
	if err != nil {
		return WikipediaNone, err
	}
	ids := r.CandidateQIDs
	if len(ids) == 0 {
		// Keep the disambiguation item so the entry still reads as deferred.
		if qid := page.WikidataItemID(); qid != "" {
			ids = []string{qid}
		}
	}
	if len(ids) == 0 {
		en.logger().Info("disambiguation page without candidates", "term", e.Term, "url", page.URL)
		return WikipediaNone, nil
	}
	e.SetRaw(ids)
	en.logger().Info("disambiguation page, entry deferred", "term", e.Term, "candidates", len(ids), "url", page.URL)
	return WikipediaDeferred, nil
}
