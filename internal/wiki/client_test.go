// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/httputil"
	"github.com/pdiddy/amidict/pkg/types"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func parseFixture(t *testing.T, name string) *html.Node {
	t.Helper()
	doc, err := httputil.ParseHTML(string(fixture(t, name)))
	require.NoError(t, err)
	return doc
}

// routeKey identifies a request by path plus its search or title
// parameter, e.g. "/w/index.php?search=methane".
func routeKey(r *http.Request) string {
	q := r.URL.Query()
	switch {
	case q.Get("search") != "":
		return r.URL.Path + "?search=" + q.Get("search")
	case q.Get("title") != "":
		return r.URL.Path + "?title=" + q.Get("title")
	}
	return r.URL.Path
}

// wikiServer serves fixtures by route key. A value of the form
// "redirect:/path" redirects; "404:name" serves the fixture with a 404.
// Unknown routes get an empty 404.
func wikiServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, ok := routes[routeKey(r)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		status := http.StatusOK
		switch {
		case strings.HasPrefix(name, "redirect:"):
			http.Redirect(w, r, strings.TrimPrefix(name, "redirect:"), http.StatusFound)
			return
		case strings.HasPrefix(name, "404:"):
			name = strings.TrimPrefix(name, "404:")
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.WriteHeader(status)
		w.Write(fixture(t, name))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(ts *httptest.Server) *Client {
	c := NewClient(httputil.NewFetcher(types.HTTPConfig{Timeout: 5 * time.Second}, nil), nil)
	c.Sites = Sites{Wikipedia: ts.URL, Wikidata: ts.URL, Wiktionary: ts.URL}
	return c
}

func TestSitesURLs(t *testing.T) {
	s := DefaultSites
	assert.Equal(t, "https://en.wikipedia.org/w/index.php?search=greenhouse+gas", s.WikipediaSearchURL(" greenhouse gas "))
	assert.Equal(t, "https://www.wikidata.org/w/index.php?search=acetone", s.WikidataSearchURL("acetone"))
	assert.Equal(t, "https://www.wikidata.org/wiki/Q49546", s.WikidataEntityURL("Q49546"))
	assert.Equal(t, "https://en.wiktionary.org/wiki/sea_level", s.WiktionaryURL("sea  level"))
}

func TestClientWikipediaPage_FollowsSearchRedirect(t *testing.T) {
	ts := wikiServer(t, map[string]string{
		"/w/index.php?search=Methane": "redirect:/wiki/Methane",
		"/wiki/Methane":               "wikipedia_methane.html",
	})

	p, err := testClient(ts).WikipediaPage(context.Background(), "Methane")
	require.NoError(t, err)
	assert.Equal(t, ts.URL+"/wiki/Methane", p.URL)
	assert.Equal(t, "Methane", p.SearchTerm)
	assert.Equal(t, "Methane", p.Title())
}

func TestClientWikidataPage(t *testing.T) {
	ts := wikiServer(t, map[string]string{"/wiki/Q37129": "wikidata_Q37129.html"})
	c := testClient(ts)

	p, err := c.WikidataPage(context.Background(), "q37129")
	require.NoError(t, err)
	assert.Equal(t, "Q37129", p.QID())

	_, err = c.WikidataPage(context.Background(), "methane")
	assert.Error(t, err)

	_, err = c.WikidataPage(context.Background(), "Q1")
	assert.ErrorIs(t, err, httputil.ErrNotFound)
}

func TestClientWiktionaryPage_MissingEntryIsNotAnError(t *testing.T) {
	ts := wikiServer(t, map[string]string{
		"/wiki/bread":  "wiktionary_bread.html",
		"/wiki/xqzzyv": "404:wiktionary_missing.html",
	})
	c := testClient(ts)

	p, err := c.WiktionaryPage(context.Background(), "xqzzyv")
	require.NoError(t, err)
	assert.Equal(t, "xqzzyv", p.Term)
	assert.True(t, p.HasNotFoundMessage())
	assert.Empty(t, p.SplitByLanguage())

	p, err = c.WiktionaryPage(context.Background(), "bread")
	require.NoError(t, err)
	assert.False(t, p.HasNotFoundMessage())
	assert.NotEmpty(t, p.SplitByLanguage())
}

func TestClientWiktionaryPage_EmptyNotFoundIsAnError(t *testing.T) {
	ts := wikiServer(t, map[string]string{})
	_, err := testClient(ts).WiktionaryPage(context.Background(), "nothing")
	assert.ErrorIs(t, err, httputil.ErrNotFound)
}

func TestLastSegment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.wikidata.org/wiki/Special:EntityPage/Q37129", "Q37129"},
		{"https://www.wikidata.org/wiki/Q5/", "Q5"},
		{"Q42", "Q42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lastSegment(tt.in), tt.in)
	}
}
