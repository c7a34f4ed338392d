// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package encyclopedia groups dictionary entries that share a Wikidata
// item into concepts, one per Q-ID, and renders the normalized view.
package encyclopedia

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/httputil"
	"github.com/pdiddy/amidict/pkg/dictionary"
)

// Bucket keys for entries that cannot be grouped.
const (
	NoWikidataID      = "no_wikidata_id"
	InvalidWikidataID = "invalid_wikidata_id"
)

// DefaultTitle names an encyclopedia built without one.
const DefaultTitle = "Encyclopedia"

// exactTerms keys entries by the trimmed term so that surface forms
// differing only in case stay separate.
var exactTerms = dictionary.Options{Key: strings.TrimSpace}

// Concept is the aggregate of the entries sharing one Wikidata item.
type Concept struct {
	WikidataID    string   `json:"wikidata_id" yaml:"wikidata_id"`
	CanonicalTerm string   `json:"canonical_term" yaml:"canonical_term"`
	PageTitle     string   `json:"page_title,omitempty" yaml:"page_title,omitempty"`
	WikipediaURL  string   `json:"wikipedia_url,omitempty" yaml:"wikipedia_url,omitempty"`
	Synonyms      []string `json:"synonyms" yaml:"synonyms"`
	Aliases       []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	EntryCount    int      `json:"entry_count" yaml:"entry_count"`

	// Lead and Figure are copies of the first lead paragraph and figure
	// found among the entries.
	Lead   *html.Node `json:"-" yaml:"-"`
	Figure *html.Node `json:"-" yaml:"-"`
}

// Conflict lists the different Wikipedia URLs carried by entries of one
// concept. The concept keeps the first.
type Conflict struct {
	WikidataID string   `json:"wikidata_id" yaml:"wikidata_id"`
	URLs       []string `json:"urls" yaml:"urls"`
}

// Encyclopedia is a read-only view over copies of dictionary entries.
type Encyclopedia struct {
	Title  string
	Logger *slog.Logger

	entries []*dictionary.Entry
	source  int

	buckets  map[string][]*dictionary.Entry
	keys     []string
	concepts []*Concept
}

// FromDictionary copies the entries of d. The dictionary is not modified
// and later changes to it are not seen.
func FromDictionary(d *dictionary.Dictionary, logger *slog.Logger) *Encyclopedia {
	if logger == nil {
		logger = slog.Default()
	}
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	entries := make([]*dictionary.Entry, 0, d.Len())
	for _, e := range d.Entries() {
		entries = append(entries, e.Clone())
	}
	return &Encyclopedia{
		Title:   title,
		Logger:  logger.With("component", "encyclopedia"),
		entries: entries,
		source:  len(entries),
	}
}

// FromHTMLFile loads a semantic-HTML dictionary and builds an encyclopedia
// from it.
func FromHTMLFile(path string, logger *slog.Logger) (*Encyclopedia, error) {
	d, err := dictionary.FromHTMLFile(path, exactTerms)
	if err != nil {
		return nil, fmt.Errorf("loading encyclopedia source: %w", err)
	}
	return FromDictionary(d, logger), nil
}

// Load reads an XML or HTML dictionary file.
func Load(path string, logger *slog.Logger) (*Encyclopedia, error) {
	d, err := dictionary.Load(path, exactTerms)
	if err != nil {
		return nil, fmt.Errorf("loading encyclopedia source: %w", err)
	}
	return FromDictionary(d, logger), nil
}

// LoadURL fetches an XML or HTML dictionary over HTTP.
func LoadURL(ctx context.Context, g httputil.Getter, rawURL string, logger *slog.Logger) (*Encyclopedia, error) {
	d, err := dictionary.FromURL(ctx, g, rawURL, exactTerms)
	if err != nil {
		return nil, fmt.Errorf("loading encyclopedia source: %w", err)
	}
	return FromDictionary(d, logger), nil
}

func (enc *Encyclopedia) logger() *slog.Logger {
	if enc.Logger == nil {
		return slog.Default()
	}
	return enc.Logger
}

// Entries returns the entries in order. After Merge they are the merged
// entries.
func (enc *Encyclopedia) Entries() []*dictionary.Entry {
	return enc.entries
}

// NormalizeByWikidataID groups the entries by Q-ID. Entries without a
// Q-ID go under NoWikidataID and entries with a malformed one under
// InvalidWikidataID.
func (enc *Encyclopedia) NormalizeByWikidataID() map[string][]*dictionary.Entry {
	buckets := make(map[string][]*dictionary.Entry)
	var keys []string
	for _, e := range enc.entries {
		k := strings.TrimSpace(e.WikidataID)
		switch {
		case k == "":
			k = NoWikidataID
		case !dictionary.IsValidWikidataID(k):
			enc.logger().Warn("invalid wikidata id", "term", e.Term, "wikidata_id", k)
			k = InvalidWikidataID
		}
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], e)
	}
	enc.buckets, enc.keys = buckets, keys
	return buckets
}

// BucketKeys returns the bucket keys in the order first seen.
func (enc *Encyclopedia) BucketKeys() []string {
	if enc.buckets == nil {
		enc.NormalizeByWikidataID()
	}
	return enc.keys
}

// AggregateSynonyms builds one concept per valid Q-ID bucket, in the
// order the buckets were first seen.
func (enc *Encyclopedia) AggregateSynonyms() []*Concept {
	if enc.buckets == nil {
		enc.NormalizeByWikidataID()
	}
	var concepts []*Concept
	for _, k := range enc.keys {
		if k == NoWikidataID || k == InvalidWikidataID {
			continue
		}
		concepts = append(concepts, aggregate(k, enc.buckets[k]))
	}
	enc.concepts = concepts
	return concepts
}

// Concepts returns the aggregated concepts, aggregating on first use.
func (enc *Encyclopedia) Concepts() []*Concept {
	if enc.concepts == nil {
		return enc.AggregateSynonyms()
	}
	return enc.concepts
}

func aggregate(qid string, entries []*dictionary.Entry) *Concept {
	c := &Concept{
		WikidataID:    qid,
		CanonicalTerm: entries[0].Term,
		EntryCount:    len(entries),
	}
	for _, e := range entries {
		c.Synonyms = appendUnique(c.Synonyms, SynonymForm(e.Term))
		for _, s := range e.Synonyms {
			c.Aliases = appendUnique(c.Aliases, s.Value)
		}
		if c.WikipediaURL == "" {
			c.WikipediaURL = e.WikipediaPage
		}
		if c.Description == "" {
			c.Description = e.Description
		}
		if c.Lead == nil {
			if n := e.LeadParagraph(); n != nil {
				c.Lead = dom.Clone(n, true)
			}
		}
		if c.Figure == nil {
			if n := e.Figure(); n != nil {
				c.Figure = dom.Clone(n, true)
			}
		}
	}
	c.PageTitle = PageTitle(c.WikipediaURL)
	if c.PageTitle == "" {
		c.PageTitle = c.CanonicalTerm
	}
	return c
}

// appendUnique appends s unless it is blank or already present. The
// comparison is case-exact.
func appendUnique(list []string, s string) []string {
	if s == "" || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// SynonymForm returns the surface form of a term. A Wikipedia article URL
// is reduced to its title with underscores read as spaces; other terms are
// only trimmed.
func SynonymForm(term string) string {
	term = strings.TrimSpace(term)
	if strings.Contains(term, "/wiki/") {
		if t := PageTitle(term); t != "" {
			return t
		}
	}
	return term
}

// PageTitle extracts the article title from a Wikipedia URL, or "".
func PageTitle(rawURL string) string {
	i := strings.Index(rawURL, "/wiki/")
	if i < 0 {
		return ""
	}
	t := rawURL[i+len("/wiki/"):]
	if j := strings.IndexAny(t, "#?"); j >= 0 {
		t = t[:j]
	}
	if u, err := url.PathUnescape(t); err == nil {
		t = u
	}
	return strings.TrimSpace(strings.ReplaceAll(t, "_", " "))
}

// Merge folds the entries of each concept into a single entry, in place.
// The merged entry takes the canonical term and carries the other surface
// forms as synonyms. Entries that are alone in their bucket, or have no
// valid Q-ID, are kept as they are. The concepts are not recomputed.
func (enc *Encyclopedia) Merge() *Encyclopedia {
	concepts := enc.Concepts()
	byID := make(map[string]*Concept, len(concepts))
	for _, c := range concepts {
		byID[c.WikidataID] = c
	}

	var merged []*dictionary.Entry
	done := make(map[string]bool)
	for _, e := range enc.entries {
		c, ok := byID[strings.TrimSpace(e.WikidataID)]
		if !ok || c.EntryCount == 1 {
			merged = append(merged, e)
			continue
		}
		if done[c.WikidataID] {
			continue
		}
		done[c.WikidataID] = true
		merged = append(merged, mergedEntry(c, enc.buckets[c.WikidataID]))
	}
	enc.entries = merged
	enc.buckets = nil
	enc.NormalizeByWikidataID()
	return enc
}

func mergedEntry(c *Concept, entries []*dictionary.Entry) *dictionary.Entry {
	m := entries[0].Clone()
	m.WikipediaPage = c.WikipediaURL
	m.Description = c.Description
	for _, e := range entries[1:] {
		if s := SynonymForm(e.Term); s != m.Term {
			m.AddSynonym("", s)
		}
		for _, s := range e.Synonyms {
			m.AddSynonym(s.Lang, s.Value)
		}
		for _, l := range e.Wikipedia {
			m.AddSitelink(l.Lang, l.URL)
		}
		for _, h := range e.WikidataHits {
			m.AddWikidataHit(h)
		}
	}
	if m.LeadParagraph() == nil && c.Lead != nil {
		m.AddContent(dom.Clone(c.Lead, true))
	}
	if m.Figure() == nil && c.Figure != nil {
		m.AddContent(dom.Clone(c.Figure, true))
	}
	return m
}

// Conflicts lists concepts whose entries disagree on the Wikipedia URL.
func (enc *Encyclopedia) Conflicts() []Conflict {
	if enc.buckets == nil {
		enc.NormalizeByWikidataID()
	}
	var out []Conflict
	for _, k := range enc.keys {
		if k == NoWikidataID || k == InvalidWikidataID {
			continue
		}
		var urls []string
		for _, e := range enc.buckets[k] {
			urls = appendUnique(urls, e.WikipediaPage)
		}
		if len(urls) > 1 {
			out = append(out, Conflict{WikidataID: k, URLs: urls})
		}
	}
	return out
}

// Dictionary returns a dictionary holding copies of the current entries.
func (enc *Encyclopedia) Dictionary() (*dictionary.Dictionary, error) {
	d, err := dictionary.New(enc.Title, exactTerms)
	if err != nil {
		return nil, err
	}
	for _, e := range enc.entries {
		if _, err := d.Add(e.Clone()); err != nil {
			return nil, err
		}
	}
	return d, nil
}
