// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pdiddy/amidict/pkg/types"
)

// Description patterns for items that are rarely the concept a dictionary
// term means.
var (
	ArticleBlacklist = []*regexp.Regexp{
		regexp.MustCompile(`(?i)((scientific|journal)\s+)?article`),
		regexp.MustCompile(`(?i)((scientific|academic)\s+)?journal`),
	}
	ArtsBlacklist = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(film|song|album)`),
	}
)

// DefaultBlacklist combines ArticleBlacklist and ArtsBlacklist.
var DefaultBlacklist = append(append([]*regexp.Regexp{}, ArticleBlacklist...), ArtsBlacklist...)

// CompileBlacklist compiles user-supplied patterns case-insensitively.
func CompileBlacklist(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("blacklist pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func (l *Lookup) blacklist() []*regexp.Regexp {
	if l.Blacklist == nil {
		return DefaultBlacklist
	}
	return l.Blacklist
}

// Blacklisted returns the first pattern matching description, or nil.
func Blacklisted(description string, blacklist []*regexp.Regexp) *regexp.Regexp {
	for _, re := range blacklist {
		if re.MatchString(description) {
			return re
		}
	}
	return nil
}

// Filter drops candidates whose description matches the blacklist.
func Filter(cands []types.Candidate, blacklist []*regexp.Regexp) []types.Candidate {
	var out []types.Candidate
	for _, c := range cands {
		if Blacklisted(c.Description, blacklist) == nil {
			out = append(out, c)
		}
	}
	return out
}

// PossibleWikidataHits looks up name and returns the ranked candidates that
// survive the blacklist, as a map from Q-ID to title. Candidates the search
// page lists without a description are checked against their entity page.
// A nil blacklist uses the Lookup's own.
func (l *Lookup) PossibleWikidataHits(ctx context.Context, name string, blacklist []*regexp.Regexp) (map[string]string, error) {
	if blacklist == nil {
		blacklist = l.blacklist()
	}
	r, err := l.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	hits := make(map[string]string)
	for _, c := range r.Candidates {
		desc, title := c.Description, c.Title
		if desc == "" {
			if page, err := l.Client.WikidataPage(ctx, c.QID); err == nil {
				desc = page.Description()
				if t := page.Title(); t != "" {
					title = t
				}
			} else {
				l.logger().Debug("wikidata page unavailable", "qid", c.QID, "error", err)
			}
		}
		if re := Blacklisted(desc, blacklist); re != nil {
			l.logger().Debug("candidate blacklisted", "name", name, "qid", c.QID, "pattern", re.String(), "description", desc)
			continue
		}
		hits[c.QID] = title
	}
	return hits, nil
}

// Resolve looks up term and drops blacklisted candidates. With strict set,
// more than one survivor is an error wrapping ErrAmbiguous; the filtered
// result is returned alongside it so callers can show the choices.
func (l *Lookup) Resolve(ctx context.Context, term string, strict bool) (types.LookupResult, error) {
	r, err := l.Lookup(ctx, term)
	if err != nil || !r.Found() {
		return r, err
	}
	filtered := Result(r.Term, Filter(r.Candidates, l.blacklist()))
	if strict && len(filtered.Candidates) > 1 {
		return filtered, fmt.Errorf("%w: %q has %d candidates", ErrAmbiguous, term, len(filtered.Candidates))
	}
	return filtered, nil
}
