// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/amidict/pkg/dictionary"
	"github.com/pdiddy/amidict/pkg/types"
)

// AddWikidata looks up the entry's term on Wikidata. When the best
// candidate's description is allowed it sets the Q-ID, entity URL and
// description, records the other candidates as hits, and attaches the
// Wikipedia sitelinks of the item. It reports whether the entry changed.
func (en *Enricher) AddWikidata(ctx context.Context, e *dictionary.Entry) (bool, error) {
	if !en.Replace && dictionary.IsValidWikidataID(e.WikidataID) {
		return false, nil
	}
	r, err := en.Lookup.Lookup(ctx, e.Term)
	if err != nil {
		return false, err
	}
	if !r.Found() {
		en.logger().Info("wikidata lookup found nothing", "term", e.Term)
		return false, nil
	}
	if !en.descriptionAllowed(r.Description) {
		en.logger().Info("wikidata hit rejected by description", "term", e.Term, "qid", r.PrimaryQID, "description", r.Description)
		return false, nil
	}
	return true, en.applyResult(ctx, e, r)
}

// applyResult copies a lookup result and the item's sitelinks to e.
func (en *Enricher) applyResult(ctx context.Context, e *dictionary.Entry, r types.LookupResult) error {
	var links map[string]string
	page, err := en.Lookup.LookupWikidataPage(ctx, r.PrimaryQID)
	if err != nil {
		return err
	}
	if page != nil {
		links = page.Sitelinks(en.languages())
	}

	if err := e.SetWikidataID(r.PrimaryQID); err != nil {
		return err
	}
	if r.Description != "" {
		e.Description = r.Description
	}
	for _, qid := range r.CandidateQIDs {
		e.AddWikidataHit(qid)
	}
	for _, lang := range en.languages() {
		url, ok := links[strings.ToLower(lang)]
		if !ok {
			continue
		}
		if strings.EqualFold(lang, "en") {
			e.WikipediaPage = url
		} else {
			e.AddSitelink(strings.ToLower(lang), url)
		}
	}
	if e.Raw != nil {
		e.SetRaw(nil)
	}
	return nil
}

// DisambiguateByDescription resolves an entry that has no valid Q-ID.
// Candidates stored under raw are checked first: the first whose label
// matches the entry label, or, when AllowedDescriptions restricts, the
// first whose description is allowed, wins. Without raw candidates the
// term is looked up again with no description restriction. When nothing
// resolves, the entry is marked NOT_FOUND and later calls leave it alone.
// It reports whether the entry changed.
func (en *Enricher) DisambiguateByDescription(ctx context.Context, e *dictionary.Entry) (bool, error) {
	if dictionary.IsValidWikidataID(e.WikidataID) || e.IsNotFound() {
		return false, nil
	}

	if e.Raw != nil && len(e.Raw.WikidataIDs) > 0 {
		qid, desc, err := en.pickCandidate(ctx, e)
		if err != nil {
			return false, err
		}
		if qid != "" {
			others := e.Raw.WikidataIDs
			if err := e.SetWikidataID(qid); err != nil {
				return false, err
			}
			if desc != "" {
				e.Description = desc
			}
			for _, id := range others {
				e.AddWikidataHit(id)
			}
			e.SetRaw(nil)
			en.logger().Debug("disambiguated", "term", e.Term, "qid", qid)
			return true, nil
		}
	} else {
		r, err := en.Lookup.Lookup(ctx, e.Term)
		if err != nil {
			return false, err
		}
		if r.Found() {
			return true, en.applyResult(ctx, e, r)
		}
	}

	e.MarkNotFound()
	en.logger().Info("no wikidata item resolved", "term", e.Term)
	return true, nil
}

// pickCandidate chooses among the raw candidates of e.
func (en *Enricher) pickCandidate(ctx context.Context, e *dictionary.Entry) (qid, desc string, err error) {
	var fallbackID, fallbackDesc string
	for _, id := range e.Raw.WikidataIDs {
		if !dictionary.IsValidWikidataID(id) {
			continue
		}
		label, d, err := en.describe(ctx, id)
		if err != nil {
			return "", "", err
		}
		if !en.descriptionAllowed(d) {
			continue
		}
		if strings.EqualFold(label, e.Label()) || strings.EqualFold(label, e.Term) {
			return id, d, nil
		}
		if fallbackID == "" && en.restricted() {
			fallbackID, fallbackDesc = id, d
		}
	}
	return fallbackID, fallbackDesc, nil
}

// describe returns the label and description of an item, preferring the
// JSON API. Lookup failures yield empty strings; only cancellation is an
// error.
func (en *Enricher) describe(ctx context.Context, qid string) (string, string, error) {
	if en.API != nil {
		s, err := en.API.GetEntity(ctx, qid)
		if err == nil {
			return s.Label, s.Description, nil
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		en.logger().Debug("wikidata api failed", "qid", qid, "error", err)
	}
	page, err := en.Lookup.LookupWikidataPage(ctx, qid)
	if err != nil || page == nil {
		return "", "", err
	}
	return page.Title(), page.Description(), nil
}

// LookupField selects which entry string MissingWikidataIDs searches for.
type LookupField string

const (
	LookupName LookupField = "name"
	LookupTerm LookupField = "term"
)

// ParseLookupField converts "name" or "term".
func ParseLookupField(s string) (LookupField, error) {
	switch f := LookupField(strings.ToLower(strings.TrimSpace(s))); f {
	case LookupName, LookupTerm:
		return f, nil
	case "":
		return LookupName, nil
	}
	return "", fmt.Errorf("unknown lookup field %q (want name or term)", s)
}

// Hits maps each searched string to its surviving candidates, Q-ID to
// title, for manual curation.
type Hits map[string]map[string]string

// WriteYAML writes the hits as a YAML mapping.
func (h Hits) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]map[string]string(h)); err != nil {
		return fmt.Errorf("encoding hits: %w", err)
	}
	return enc.Close()
}

// ReadHits reads hits written by WriteYAML.
func ReadHits(r io.Reader) (Hits, error) {
	var h Hits
	if err := yaml.NewDecoder(r).Decode(&h); err != nil {
		if err == io.EOF {
			return Hits{}, nil
		}
		return nil, fmt.Errorf("decoding hits: %w", err)
	}
	return h, nil
}

// MissingWikidataIDs searches Wikidata for entries without a Q-ID and
// collects the blacklist-filtered candidates. The search string is the
// chosen field with the other as fallback. At most maxEntries entries are
// searched when maxEntries is positive. Strings without surviving
// candidates are left out.
func (en *Enricher) MissingWikidataIDs(ctx context.Context, d *dictionary.Dictionary, field LookupField, maxEntries int) (Hits, error) {
	hits := make(Hits)
	for i, e := range d.EntriesWithoutWikidataID() {
		if maxEntries > 0 && i >= maxEntries {
			break
		}
		if i > 0 {
			if err := en.wait(ctx, en.Delay); err != nil {
				return hits, err
			}
		}
		s := e.Name
		if field == LookupTerm || s == "" {
			s = e.Term
		}
		if field == LookupTerm && s == "" {
			s = e.Name
		}
		found, err := en.Lookup.PossibleWikidataHits(ctx, s, nil)
		if err != nil {
			return hits, err
		}
		if len(found) > 0 {
			hits[s] = found
		}
	}
	return hits, nil
}
