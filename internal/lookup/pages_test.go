// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/amidict/internal/wiki"
)

const methaneArticle = `<html><head><title>Methane - Wikipedia</title></head><body>
<main><h1 id="firstHeading">Methane</h1>
<div id="mw-content-text"><div class="mw-parser-output">
<p><b>Methane</b> is a chemical compound with the chemical formula CH<sub>4</sub>.</p>
</div></div></main></body></html>`

func TestLookupWikipedia(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/w/index.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "methane" {
			http.Redirect(w, r, "/wiki/Methane", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/wiki/Methane", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(methaneArticle))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	l := testLookup(ts)
	ctx := context.Background()

	p, err := l.LookupWikipedia(ctx, "methane")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, ts.URL+"/wiki/Methane", p.URL)
	assert.Equal(t, "Methane", p.Title())
	assert.Equal(t, wiki.PageArticle, p.PageType(ctx))

	p, err = l.LookupWikipedia(ctx, "   ")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = l.LookupWikipedia(ctx, "xqzzyv")
	require.NoError(t, err)
	assert.Nil(t, p, "failed searches are absent, not errors")
}

func TestLookupWikidataPage(t *testing.T) {
	ts := searchServer(t, nil, map[string]string{"/wiki/Q99999990": disambigEntity})
	l := testLookup(ts)

	p, err := l.LookupWikidataPage(context.Background(), "Q99999990")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Wikimedia disambiguation page", p.Description())

	p, err = l.LookupWikidataPage(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestLookupWiktionary(t *testing.T) {
	ts := searchServer(t, nil, map[string]string{
		"/wiki/sea_level": `<html><body><div id="mw-content-text"><div class="mw-parser-output">
<h2>English</h2><h3>Noun</h3><p>sea level</p><ol><li>The mean level of the sea surface.</li></ol>
</div></div></body></html>`,
	})
	l := testLookup(ts)

	p, err := l.LookupWiktionary(context.Background(), "sea level")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"The mean level of the sea surface."}, p.Definitions("English", "Noun"))

	p, err = l.LookupWiktionary(context.Background(), "xqzzyv")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestLookupWiktionary_Cancelled(t *testing.T) {
	ts := searchServer(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testLookup(ts).LookupWiktionary(ctx, "bread")
	assert.ErrorIs(t, err, context.Canceled)
}
