// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encyclopedia

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// fakeResolver answers from fixed tables and records what it was asked.
type fakeResolver struct {
	pages map[string]string
	terms map[string]string
	fail  map[string]bool

	askedPages []string
	askedTerms []string
}

func (f *fakeResolver) PageItem(_ context.Context, pageURL string) (string, error) {
	f.askedPages = append(f.askedPages, pageURL)
	if f.fail[pageURL] {
		return "", errors.New("page unavailable")
	}
	return f.pages[pageURL], nil
}

func (f *fakeResolver) TermItem(_ context.Context, term string) (string, error) {
	f.askedTerms = append(f.askedTerms, term)
	if f.fail[term] {
		return "", errors.New("search unavailable")
	}
	return f.terms[term], nil
}

func contentNode(t *testing.T, fragment string) *html.Node {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "body"})
	require.NoError(t, err)
	require.NotEmpty(t, nodes)
	return nodes[0]
}

func TestResolveMissingIDs(t *testing.T) {
	tests := []struct {
		name       string
		row        row
		content    string
		res        *fakeResolver
		wantQID    string
		wantURL    string
		wantPages  []string
		wantTerms  []string
		wantResolved int
	}{
		{
			name:       "wikipedia page item",
			row:        row{term: "ethanol", url: "https://en.wikipedia.org/wiki/Ethanol"},
			res:        &fakeResolver{pages: map[string]string{"https://en.wikipedia.org/wiki/Ethanol": "Q153"}},
			wantQID:    "Q153",
			wantURL:    "https://en.wikipedia.org/wiki/Ethanol",
			wantPages:  []string{"https://en.wikipedia.org/wiki/Ethanol"},
			wantResolved: 1,
		},
		{
			name:       "term lookup when the page has no item",
			row:        row{term: "methane", url: "https://en.wikipedia.org/wiki/Methane"},
			res:        &fakeResolver{terms: map[string]string{"methane": "Q37129"}},
			wantQID:    "Q37129",
			wantURL:    "https://en.wikipedia.org/wiki/Methane",
			wantPages:  []string{"https://en.wikipedia.org/wiki/Methane"},
			wantTerms:  []string{"methane"},
			wantResolved: 1,
		},
		{
			name:       "relative link in content stands in for the page",
			row:        row{term: "albedo"},
			content:    `<p>See <a href="https://www.wikidata.org/wiki/Q101038">item</a> and <a href="/wiki/Albedo#Terrestrial">albedo</a>.</p>`,
			res:        &fakeResolver{pages: map[string]string{"https://en.wikipedia.org/wiki/Albedo": "Q101038"}},
			wantQID:    "Q101038",
			wantURL:    "https://en.wikipedia.org/wiki/Albedo",
			wantPages:  []string{"https://en.wikipedia.org/wiki/Albedo"},
			wantResolved: 1,
		},
		{
			name:      "failed page lookup falls back to the term",
			row:       row{term: "ozone", url: "https://en.wikipedia.org/wiki/Ozone"},
			res:       &fakeResolver{fail: map[string]bool{"https://en.wikipedia.org/wiki/Ozone": true, "ozone": true}},
			wantURL:   "https://en.wikipedia.org/wiki/Ozone",
			wantPages: []string{"https://en.wikipedia.org/wiki/Ozone"},
			wantTerms: []string{"ozone"},
		},
		{
			name:    "existing id is not looked up",
			row:     row{term: "ethanol", qid: "Q153"},
			res:     &fakeResolver{},
			wantQID: "Q153",
		},
		{
			name:    "malformed id stays for the invalid bucket",
			row:     row{term: "widget", qid: "NOT_AN_ID"},
			res:     &fakeResolver{terms: map[string]string{"widget": "Q1"}},
			wantQID: "NOT_AN_ID",
		},
		{
			name:      "resolver returns a malformed id",
			row:       row{term: "gizmo"},
			res:       &fakeResolver{terms: map[string]string{"gizmo": "nonsense"}},
			wantTerms: []string{"gizmo"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := buildDict(t, tt.row)
			if tt.content != "" {
				d.Entry(tt.row.term).AddContent(contentNode(t, tt.content))
			}
			enc := FromDictionary(d, nil)

			n, err := enc.ResolveMissingIDs(context.Background(), tt.res, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantResolved, n)

			e := enc.Entries()[0]
			assert.Equal(t, tt.wantQID, e.WikidataID)
			assert.Equal(t, tt.wantURL, e.WikipediaPage)
			assert.Equal(t, tt.wantPages, tt.res.askedPages)
			assert.Equal(t, tt.wantTerms, tt.res.askedTerms)

			assert.Equal(t, tt.row.qid, d.Entry(tt.row.term).WikidataID, "the source dictionary is not changed")
		})
	}
}

func TestResolveMissingIDs_RegroupsConcepts(t *testing.T) {
	d := buildDict(t,
		row{term: "ethanol", qid: "Q153"},
		row{term: "ethyl alcohol"},
		row{term: "carbon budget"},
	)
	enc := FromDictionary(d, nil)
	require.Len(t, enc.Concepts(), 1)
	assert.Equal(t, []string{"ethanol"}, enc.Concepts()[0].Synonyms)

	n, err := enc.ResolveMissingIDs(context.Background(), &fakeResolver{terms: map[string]string{"ethyl alcohol": "Q153"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	concepts := enc.Concepts()
	require.Len(t, concepts, 1)
	assert.Equal(t, []string{"ethanol", "ethyl alcohol"}, concepts[0].Synonyms)
	assert.Equal(t, []string{"Q153", NoWikidataID}, enc.BucketKeys())
	assert.Empty(t, d.Entry("ethyl alcohol").WikidataID, "the source dictionary is not changed")
}

func TestResolveMissingIDs_Cancelled(t *testing.T) {
	enc := FromDictionary(buildDict(t, row{term: "ethanol"}, row{term: "methane"}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := enc.ResolveMissingIDs(ctx, &fakeResolver{terms: map[string]string{"ethanol": "Q153"}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}
