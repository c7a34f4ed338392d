// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"strings"
	"testing"

	"github.com/go-shiori/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/amidict/internal/httputil"
)

func methanePage(t *testing.T) *WikipediaPage {
	t.Helper()
	return NewWikipediaPage(parseFixture(t, "wikipedia_methane.html"), "https://en.wikipedia.org/wiki/Methane")
}

func TestWikipediaTitle(t *testing.T) {
	assert.Equal(t, "Methane", methanePage(t).Title())

	doc, err := httputil.ParseHTML("<html><head><title>Ozone - Wikipedia</title></head><body></body></html>")
	require.NoError(t, err)
	assert.Equal(t, "Ozone", NewWikipediaPage(doc, "").Title())
}

func TestWikipediaMainContent_StripsChrome(t *testing.T) {
	p := methanePage(t)
	main := p.MainContent()
	require.NotNil(t, main)

	txt := dom.TextContent(main)
	assert.NotContains(t, txt, "33 languages")
	assert.NotContains(t, txt, "For other uses")
	assert.NotContains(t, txt, "[1]")
	assert.NotContains(t, txt, "[edit]")
	assert.Contains(t, txt, "tetrahedral molecule")

	// The source document is untouched.
	assert.Contains(t, dom.TextContent(p.Document()), "For other uses")
}

func TestWikipediaLeadParagraph(t *testing.T) {
	lead := methanePage(t).LeadParagraph()
	require.NotNil(t, lead)

	assert.Equal(t, "p", lead.Data)
	assert.Nil(t, lead.Parent)
	assert.Equal(t, LeadParagraphClass, dom.ClassName(lead))
	assert.True(t, strings.HasPrefix(text(lead), "Methane (/ˈmɛθeɪn/) is a chemical compound"))
	assert.NotContains(t, text(lead), "[1]")
	assert.Len(t, dom.GetElementsByTagName(lead, "sub"), 1)

	assert.Equal(t, []string{"Methane", "marsh gas"}, Bolds(lead))
	links := Links(lead)
	require.Len(t, links, 3)
	assert.Equal(t, Link{Href: "/wiki/Chemical_compound", Text: "chemical compound"}, links[1])
}

func TestWikipediaLeadParagraph_NoneLongEnough(t *testing.T) {
	doc, err := httputil.ParseHTML("<main><p>Too short.</p><p> </p></main>")
	require.NoError(t, err)
	assert.Nil(t, NewWikipediaPage(doc, "").LeadParagraph())
}

func TestWikipediaFigureBlock(t *testing.T) {
	p := methanePage(t)
	require.NotNil(t, p.InfoBox())

	fig := p.FigureBlock()
	require.NotNil(t, fig)
	assert.Equal(t, FigureTitle, dom.GetAttribute(fig, "title"))

	a := dom.QuerySelector(fig, "a")
	require.NotNil(t, a)
	assert.Equal(t, "https://en.wikipedia.org/wiki/File:Methane-CRC-MW-3D-balls.png", dom.GetAttribute(a, "href"))

	img := dom.QuerySelector(fig, "img")
	require.NotNil(t, img)
	assert.Equal(t, "https://upload.wikimedia.org/wikipedia/commons/thumb/methane.png", dom.GetAttribute(img, "src"))
	assert.False(t, dom.HasAttribute(img, "srcset"))
}

func TestWikipediaFigureBlock_FallsBackToFirstFigure(t *testing.T) {
	doc, err := httputil.ParseHTML(`<main><p>Albedo is the fraction of sunlight that is reflected.</p>
<figure><a href="/wiki/File:Albedo.svg"><img src="//upload.wikimedia.org/albedo.svg" srcset="x 2x"></a><figcaption>Albedo</figcaption></figure>
<figure><img src="/second.png"></figure></main>`)
	require.NoError(t, err)

	fig := NewWikipediaPage(doc, "https://en.wikipedia.org/wiki/Albedo").FigureBlock()
	require.NotNil(t, fig)
	inner := dom.QuerySelector(fig, "figure")
	require.NotNil(t, inner)
	assert.Equal(t, "https://en.wikipedia.org/wiki/File:Albedo.svg", dom.GetAttribute(dom.QuerySelector(inner, "a"), "href"))
	assert.Equal(t, "https://upload.wikimedia.org/albedo.svg", dom.GetAttribute(dom.QuerySelector(inner, "img"), "src"))
	assert.Len(t, dom.GetElementsByTagName(fig, "img"), 1)
}

func TestWikipediaFigureBlock_NoFigure(t *testing.T) {
	doc, err := httputil.ParseHTML("<main><p>No infobox on this page at all.</p></main>")
	require.NoError(t, err)
	assert.Nil(t, NewWikipediaPage(doc, "").FigureBlock())
}

func TestWikipediaWikidataItemID(t *testing.T) {
	assert.Equal(t, "Q37129", methanePage(t).WikidataItemID())

	doc, err := httputil.ParseHTML(`<ul><li><a href="https://www.wikidata.org/wiki/Special:EntityPage/Q42">Wikidata item</a></li></ul>`)
	require.NoError(t, err)
	assert.Equal(t, "Q42", NewWikipediaPage(doc, "").WikidataItemID())

	doc, err = httputil.ParseHTML(`<p>nothing</p>`)
	require.NoError(t, err)
	assert.Empty(t, NewWikipediaPage(doc, "").WikidataItemID())
}

func TestWikipediaPageInfoURL(t *testing.T) {
	assert.Equal(t, "https://en.wikipedia.org/w/index.php?title=Methane&action=info", methanePage(t).PageInfoURL())
}

func TestWikipediaBasicInfo_FetchedOnce(t *testing.T) {
	calls := 0
	ts := wikiServer(t, map[string]string{
		"/wiki/Methane":              "wikipedia_methane.html",
		"/w/index.php?title=Methane": "info_methane.html",
	})
	c := testClient(ts)
	c.Getter = countGets(c.Getter, &calls)

	p, err := c.WikipediaPageForURL(context.Background(), ts.URL+"/wiki/Methane")
	require.NoError(t, err)

	b, err := p.BasicInfo(context.Background())
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "chemical compound", b.CentralDescription())
	assert.Equal(t, "Q37129", b.WikidataItemID())

	_, err = p.BasicInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWikipediaBasicInfo_WithoutClient(t *testing.T) {
	b, err := methanePage(t).BasicInfo(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestWikipediaPageType(t *testing.T) {
	ts := wikiServer(t, map[string]string{
		"/wiki/Methane":                             "wikipedia_methane.html",
		"/w/index.php?title=Methane":                "info_methane.html",
		"/wiki/Delhi_(disambiguation)":              "wikipedia_delhi.html",
		"/w/index.php?title=Delhi_(disambiguation)": "info_delhi.html",
		"/w/index.php?search=xqzzyv":                "wikipedia_search_none.html",
	})
	c := testClient(ts)

	tests := []struct {
		path string
		want PageType
	}{
		{"/wiki/Methane", PageArticle},
		{"/wiki/Delhi_(disambiguation)", PageDisambiguation},
		{"/w/index.php?search=xqzzyv", PageUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := c.WikipediaPageForURL(context.Background(), ts.URL+tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.PageType(context.Background()))
		})
	}
}

func TestWikipediaPageType_FromMarkup(t *testing.T) {
	tests := []struct {
		name string
		html string
		want PageType
	}{
		{
			name: "list",
			html: `<h1 id="firstHeading">List of alkanes</h1><main><p>The following is a list of straight-chain alkanes.</p></main>`,
			want: PageList,
		},
		{
			name: "redirect",
			html: `<h1 id="firstHeading">Methane</h1><main><span class="mw-redirectedfrom">(Redirected from CH4)</span><p>Methane is a chemical compound.</p></main>`,
			want: PageRedirect,
		},
		{
			name: "disambiguation box",
			html: `<h1 id="firstHeading">Mercury</h1><main><p>Mercury may refer to several things.</p><table class="dmbox dmbox-disambig"></table></main>`,
			want: PageDisambiguation,
		},
		{
			name: "no content",
			html: `<p>bare</p>`,
			want: PageUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := httputil.ParseHTML(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, NewWikipediaPage(doc, "").PageType(context.Background()))
		})
	}
}

func TestWikipediaDisambiguationOptions(t *testing.T) {
	ts := wikiServer(t, map[string]string{
		"/wiki/Delhi_(disambiguation)":              "wikipedia_delhi.html",
		"/w/index.php?title=Delhi_(disambiguation)": "info_delhi.html",
	})
	p, err := testClient(ts).WikipediaPageForURL(context.Background(), ts.URL+"/wiki/Delhi_(disambiguation)")
	require.NoError(t, err)

	opts := p.DisambiguationOptions(context.Background())
	require.Len(t, opts, 3)
	assert.Equal(t, "New Delhi", opts[0].Title)
	assert.Equal(t, ts.URL+"/wiki/New_Delhi", opts[0].URL)
	assert.Equal(t, "New Delhi, the capital of India", opts[0].Text)
	assert.Equal(t, "Delhi, Ontario", opts[2].Title)

	assert.Nil(t, methanePage(t).DisambiguationOptions(context.Background()))
}

func TestWikipediaReadableText(t *testing.T) {
	txt, err := methanePage(t).ReadableText()
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(txt), "methane")
}

func TestPageTypeAcceptable(t *testing.T) {
	assert.True(t, PageArticle.Acceptable())
	assert.True(t, PageRedirect.Acceptable())
	assert.False(t, PageDisambiguation.Acceptable())
	assert.False(t, PageList.Acceptable())
	assert.False(t, PageUnknown.Acceptable())
}

type getCounter struct {
	next  httputil.Getter
	calls *int
}

func (g getCounter) Get(ctx context.Context, url string) (*httputil.Response, error) {
	*g.calls++
	return g.next.Get(ctx, url)
}

func countGets(next httputil.Getter, calls *int) httputil.Getter {
	return getCounter{next: next, calls: calls}
}
