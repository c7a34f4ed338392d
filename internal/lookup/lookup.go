// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup resolves terms against Wikidata, Wikipedia and Wiktionary.
// Wikidata candidates come from the full-text search page and are ranked by
// statement count, which favours well-described items over namesakes.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/wiki"
	"github.com/pdiddy/amidict/pkg/types"
)

// MaxCandidates is the default number of ranked candidates kept per term.
const MaxCandidates = 5

// ErrAmbiguous is returned by strict resolution when more than one
// candidate survives filtering.
var ErrAmbiguous = errors.New("lookup ambiguous")

var (
	resultItemSel    = cascadia.MustCompile("ul.mw-search-results > li")
	resultHeadingSel = cascadia.MustCompile("div.mw-search-result-heading > a[href]")
	resultDescSel    = cascadia.MustCompile("div.searchresult")
	resultDataSel    = cascadia.MustCompile("div.mw-search-result-data")
)

// Lookup searches the wikis for terms.
type Lookup struct {
	Client *wiki.Client

	// MaxCandidates caps the ranked candidates (default MaxCandidates).
	MaxCandidates int

	// Blacklist filters candidates by description in PossibleWikidataHits
	// and Resolve. Nil means DefaultBlacklist.
	Blacklist []*regexp.Regexp

	Logger *slog.Logger
}

// New returns a Lookup over client configured from cfg.
func New(client *wiki.Client, cfg types.LookupConfig, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	max := cfg.MaxCandidates
	if max <= 0 {
		max = MaxCandidates
	}
	return &Lookup{
		Client:        client,
		MaxCandidates: max,
		Logger:        logger.With("component", "lookup"),
	}
}

func (l *Lookup) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *Lookup) maxCandidates() int {
	if l.MaxCandidates <= 0 {
		return MaxCandidates
	}
	return l.MaxCandidates
}

// Lookup searches Wikidata for term and returns the best-ranked candidate
// with up to MaxCandidates alternatives. An empty result list yields the
// zero result for term. Transport failures are logged and also yield the
// zero result; the error return is reserved for cancellation.
func (l *Lookup) Lookup(ctx context.Context, term string) (types.LookupResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return types.LookupResult{}, nil
	}
	cands, err := l.SearchCandidates(ctx, term)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.LookupResult{Term: term}, ctxErr
		}
		l.logger().Warn("wikidata search failed", "term", term, "error", err)
		return types.LookupResult{Term: term}, nil
	}
	return Result(term, Rank(cands, l.maxCandidates())), nil
}

// SearchCandidates fetches the Wikidata search page for term and returns
// every hit in page order.
func (l *Lookup) SearchCandidates(ctx context.Context, term string) ([]types.Candidate, error) {
	doc, err := l.Client.WikidataSearch(ctx, term)
	if err != nil {
		return nil, err
	}
	cands := ParseSearchResults(doc)
	l.logger().Debug("wikidata search", "term", term, "candidates", len(cands))
	return cands, nil
}

// ParseSearchResults reads the hits of a Wikidata search results page.
// Items without a heading link are skipped, as are repeats of a Q-ID
// already seen.
func ParseSearchResults(doc *html.Node) []types.Candidate {
	var (
		cands []types.Candidate
		seen  = make(map[string]bool)
	)
	for _, li := range cascadia.QueryAll(doc, resultItemSel) {
		a := cascadia.Query(li, resultHeadingSel)
		if a == nil {
			continue
		}
		qid := lastSegment(dom.GetAttribute(a, "href"))
		if qid == "" || seen[qid] {
			continue
		}
		seen[qid] = true

		title, _, _ := strings.Cut(normalizeSpace(dom.TextContent(a)), "(Q")
		c := types.Candidate{
			QID:        qid,
			Title:      strings.TrimSpace(title),
			Statements: statementCount(cascadia.Query(li, resultDataSel)),
			Order:      len(cands),
		}
		if d := cascadia.Query(li, resultDescSel); d != nil {
			c.Description = normalizeSpace(dom.TextContent(d))
		}
		cands = append(cands, c)
	}
	return cands
}

// statementCount reads "N statements, M sitelinks - date" and returns N,
// or 0 when the text does not start with a count.
func statementCount(n *html.Node) int {
	if n == nil {
		return 0
	}
	s, _, _ := strings.Cut(normalizeSpace(dom.TextContent(n)), " statement")
	count, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return 0
	}
	return count
}

// Rank orders candidates by descending statement count, keeping page order
// for ties, and returns at most max of them.
func Rank(cands []types.Candidate, max int) []types.Candidate {
	ranked := make([]types.Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Statements > ranked[j].Statements
	})
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// Result builds a LookupResult from ranked candidates.
func Result(term string, ranked []types.Candidate) types.LookupResult {
	r := types.LookupResult{Term: term}
	if len(ranked) == 0 {
		return r
	}
	r.PrimaryQID = ranked[0].QID
	r.Description = ranked[0].Description
	r.Candidates = ranked
	for _, c := range ranked {
		r.CandidateQIDs = append(r.CandidateQIDs, c.QID)
	}
	return r
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
