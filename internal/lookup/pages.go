// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/amidict/internal/httputil"
	"github.com/pdiddy/amidict/internal/wiki"
)

// LookupWikipedia searches Wikipedia for term and returns the landing page.
// Wikipedia redirects exact title matches to the article. A missing page or
// a transport failure yields nil without error; callers check PageType
// before taking data from the page.
func (l *Lookup) LookupWikipedia(ctx context.Context, term string) (*wiki.WikipediaPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	p, err := l.Client.WikipediaPage(ctx, term)
	if err != nil {
		return nil, l.absent(ctx, "wikipedia", term, err)
	}
	return p, nil
}

// LookupWiktionary fetches the Wiktionary entry for term. Missing entries
// come back as pages whose HasNotFoundMessage is true.
func (l *Lookup) LookupWiktionary(ctx context.Context, term string) (*wiki.WiktionaryPage, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	p, err := l.Client.WiktionaryPage(ctx, term)
	if err != nil {
		return nil, l.absent(ctx, "wiktionary", term, err)
	}
	return p, nil
}

// LookupWikidataPage fetches the entity page for qid. Failures are logged
// and yield nil.
func (l *Lookup) LookupWikidataPage(ctx context.Context, qid string) (*wiki.WikidataPage, error) {
	p, err := l.Client.WikidataPage(ctx, qid)
	if err != nil {
		return nil, l.absent(ctx, "wikidata", qid, err)
	}
	return p, nil
}

// PageItem fetches the Wikipedia page at pageURL and returns the Wikidata
// item it links to, or "" when the page or the link is missing.
func (l *Lookup) PageItem(ctx context.Context, pageURL string) (string, error) {
	p, err := l.Client.WikipediaPageForURL(ctx, pageURL)
	if err != nil {
		return "", l.absent(ctx, "wikipedia", pageURL, err)
	}
	return p.WikidataItemID(), nil
}

// TermItem returns the best-ranked Wikidata item for term, or "".
func (l *Lookup) TermItem(ctx context.Context, term string) (string, error) {
	r, err := l.Lookup(ctx, term)
	if err != nil {
		return "", err
	}
	return r.PrimaryQID, nil
}

// absent logs err and reports only cancellation to the caller.
func (l *Lookup) absent(ctx context.Context, source, term string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, httputil.ErrNotFound) {
		l.logger().Info("page not found", "source", source, "term", term)
	} else {
		l.logger().Warn("page lookup failed", "source", source, "term", term, "error", err)
	}
	return nil
}
