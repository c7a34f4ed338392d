// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki wraps fetched Wikipedia, Wikidata and Wiktionary pages and
// exposes typed facets of them. Accessors degrade to zero values when the
// markup they look for is missing. Pages can be built directly from a
// parsed document so tests run against stored snapshots.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/httputil"
)

// Sites holds the base URLs of the three wikis.
type Sites struct {
	Wikipedia  string
	Wikidata   string
	Wiktionary string
}

// DefaultSites points at the English-language production wikis.
var DefaultSites = Sites{
	Wikipedia:  "https://en.wikipedia.org",
	Wikidata:   "https://www.wikidata.org",
	Wiktionary: "https://en.wiktionary.org",
}

// Client fetches wiki pages through a Getter.
type Client struct {
	Getter httputil.Getter
	Sites  Sites
	Logger *slog.Logger
}

// NewClient returns a Client for the default sites.
func NewClient(g httputil.Getter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Getter: g, Sites: DefaultSites, Logger: logger.With("component", "wiki")}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// WikipediaSearchURL returns the search URL for term. Wikipedia redirects
// an exact title match to the article itself.
func (s Sites) WikipediaSearchURL(term string) string {
	return s.Wikipedia + "/w/index.php?search=" + url.QueryEscape(strings.TrimSpace(term))
}

// WikidataSearchURL returns the Wikidata full-text search URL for term.
func (s Sites) WikidataSearchURL(term string) string {
	return s.Wikidata + "/w/index.php?search=" + url.QueryEscape(strings.TrimSpace(term))
}

// WikidataEntityURL returns the page URL of a Q or P item.
func (s Sites) WikidataEntityURL(id string) string {
	return s.Wikidata + "/wiki/" + url.PathEscape(id)
}

// WiktionaryURL returns the entry URL for term with whitespace runs
// replaced by underscores.
func (s Sites) WiktionaryURL(term string) string {
	return s.Wiktionary + "/wiki/" + url.PathEscape(underscored(term))
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func underscored(term string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(term), "_")
}

// WikipediaPage searches Wikipedia for term and wraps the landing page.
func (c *Client) WikipediaPage(ctx context.Context, term string) (*WikipediaPage, error) {
	p, err := c.WikipediaPageForURL(ctx, c.Sites.WikipediaSearchURL(term))
	if err != nil {
		return nil, err
	}
	p.SearchTerm = term
	return p, nil
}

// WikipediaPageForURL fetches rawURL and wraps it.
func (c *Client) WikipediaPageForURL(ctx context.Context, rawURL string) (*WikipediaPage, error) {
	doc, resp, err := httputil.GetHTML(ctx, c.Getter, rawURL)
	if err != nil {
		return nil, err
	}
	p := NewWikipediaPage(doc, resp.URL)
	p.client = c
	return p, nil
}

// WikidataPage fetches the entity page for a Q or P item.
func (c *Client) WikidataPage(ctx context.Context, id string) (*WikidataPage, error) {
	if !entityIDPattern.MatchString(id) {
		return nil, fmt.Errorf("invalid Wikidata id %q", id)
	}
	doc, resp, err := httputil.GetHTML(ctx, c.Getter, c.Sites.WikidataEntityURL(strings.ToUpper(id)))
	if err != nil {
		return nil, err
	}
	return NewWikidataPage(doc, resp.URL), nil
}

// WikidataSearch fetches the Wikidata search results page for term.
func (c *Client) WikidataSearch(ctx context.Context, term string) (*html.Node, error) {
	doc, _, err := httputil.GetHTML(ctx, c.Getter, c.Sites.WikidataSearchURL(term))
	return doc, err
}

// WiktionaryPage fetches the entry for term. Wiktionary answers a missing
// entry with a 404 page that still carries the not-found notice; that page
// is wrapped rather than reported as an error.
func (c *Client) WiktionaryPage(ctx context.Context, term string) (*WiktionaryPage, error) {
	rawURL := c.Sites.WiktionaryURL(term)
	doc, resp, err := httputil.GetHTML(ctx, c.Getter, rawURL)
	if err != nil {
		var fe *httputil.FetchError
		if !errors.As(err, &fe) || !errors.Is(err, httputil.ErrNotFound) || len(fe.Body) == 0 {
			return nil, err
		}
		text, derr := httputil.DecodeText(fe.Body, "")
		if derr != nil {
			return nil, err
		}
		if doc, derr = httputil.ParseHTML(text); derr != nil {
			return nil, err
		}
		c.logger().Debug("wiktionary entry missing", "term", term)
		p := NewWiktionaryPage(doc, rawURL)
		p.Term = term
		return p, nil
	}
	p := NewWiktionaryPage(doc, resp.URL)
	p.Term = term
	return p, nil
}

var entityIDPattern = regexp.MustCompile(`^[PQpq]\d+$`)

// resolve makes ref absolute against base.
func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// lastSegment returns the text after the final '/'.
func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
