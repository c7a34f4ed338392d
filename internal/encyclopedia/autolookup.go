// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encyclopedia

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"

	"github.com/pdiddy/amidict/pkg/dictionary"
)

// WikipediaBase resolves relative /wiki/ links found in entry content.
const WikipediaBase = "https://en.wikipedia.org"

var wikiLinkSel = cascadia.MustCompile(`a[href*="/wiki/"]`)

// Resolver finds Wikidata items for entries that carry none.
// *lookup.Lookup implements it.
type Resolver interface {
	// PageItem returns the item linked from the Wikipedia page at pageURL.
	PageItem(ctx context.Context, pageURL string) (string, error)
	// TermItem returns the best-ranked item for term.
	TermItem(ctx context.Context, term string) (string, error)
}

// ResolveMissingIDs fills the Wikidata ID of every entry that has none.
// The entry's Wikipedia page is tried first, then a lookup of the term.
// When wikipedia_page is empty, the first Wikipedia /wiki/ link in the
// entry's content stands in for it and is recorded. Entries with a
// malformed ID are left for the invalid bucket. Lookups are separated by
// delay. A failed lookup leaves the entry without an ID; only cancellation
// stops the pass. It returns the number of entries that gained an ID.
func (enc *Encyclopedia) ResolveMissingIDs(ctx context.Context, r Resolver, delay time.Duration) (int, error) {
	var resolved, asked int
	for _, e := range enc.entries {
		if strings.TrimSpace(e.WikidataID) != "" {
			continue
		}
		if e.WikipediaPage == "" {
			e.WikipediaPage = contentWikiLink(e)
		}
		if asked > 0 {
			if err := sleep(ctx, delay); err != nil {
				enc.invalidate()
				return resolved, err
			}
		}
		asked++

		qid, err := enc.resolveEntry(ctx, r, e)
		if err != nil {
			enc.invalidate()
			return resolved, err
		}
		if qid == "" {
			enc.logger().Info("no wikidata id resolved", "term", e.Term)
			continue
		}
		if err := e.SetWikidataID(qid); err != nil {
			enc.logger().Warn("ignoring resolved wikidata id", "term", e.Term, "qid", qid, "error", err)
			continue
		}
		enc.logger().Debug("resolved wikidata id", "term", e.Term, "qid", qid)
		resolved++
	}
	enc.invalidate()
	return resolved, nil
}

func (enc *Encyclopedia) resolveEntry(ctx context.Context, r Resolver, e *dictionary.Entry) (string, error) {
	if e.WikipediaPage != "" {
		qid, err := r.PageItem(ctx, e.WikipediaPage)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil {
			enc.logger().Warn("wikipedia page lookup failed", "term", e.Term, "url", e.WikipediaPage, "error", err)
		} else if dictionary.IsValidWikidataID(qid) {
			return qid, nil
		}
	}
	qid, err := r.TermItem(ctx, e.Term)
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		enc.logger().Warn("wikidata term lookup failed", "term", e.Term, "error", err)
		return "", nil
	}
	return qid, nil
}

// invalidate drops the grouping so it is rebuilt from the current IDs.
func (enc *Encyclopedia) invalidate() {
	enc.buckets, enc.keys, enc.concepts = nil, nil, nil
}

// contentWikiLink returns the absolute URL of the first Wikipedia article
// link in e's content, or "".
func contentWikiLink(e *dictionary.Entry) string {
	base, _ := url.Parse(WikipediaBase)
	for _, n := range e.Content {
		for _, a := range cascadia.QueryAll(n, wikiLinkSel) {
			for _, attr := range a.Attr {
				if attr.Key != "href" {
					continue
				}
				u, err := url.Parse(strings.TrimSpace(attr.Val))
				if err != nil {
					continue
				}
				u = base.ResolveReference(u)
				if strings.HasSuffix(u.Hostname(), "wikipedia.org") {
					u.Fragment, u.RawQuery = "", ""
					return u.String()
				}
			}
		}
	}
	return ""
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
