// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/httputil"
)

// MinLeadLen is the shortest plain-text length accepted as a lead paragraph.
const MinLeadLen = 20

// Decoration applied to extracted blocks.
const (
	LeadParagraphClass = "wpage_first_para"
	FigureTitle        = "figure"
)

// DisambiguationDescription is the central description Wikipedia gives
// disambiguation pages.
const DisambiguationDescription = "Wikimedia disambiguation page"

// PageType classifies a Wikipedia landing page.
type PageType string

const (
	PageArticle        PageType = "article"
	PageDisambiguation PageType = "disambiguation"
	PageRedirect       PageType = "redirect"
	PageList           PageType = "list"
	PageUnknown        PageType = "unknown"
)

// Acceptable reports whether an entry may take its data from the page.
func (t PageType) Acceptable() bool {
	return t == PageArticle || t == PageRedirect
}

// mainRemovals lists the non-content widgets stripped from <main>.
var mainRemovals = cascadia.MustCompile(strings.Join([]string{
	"nav",
	"noscript",
	"div#p-lang-btn",
	".mw-editsection",
	"sup.reference",
	".mw-jump-link",
	"#siteNotice",
	".hatnote",
	".mw-indicators",
}, ", "))

var (
	mainSel         = cascadia.MustCompile("main")
	contentTextSel  = cascadia.MustCompile("#mw-content-text")
	paragraphSel    = cascadia.MustCompile("p")
	firstHeadingSel = cascadia.MustCompile("h1#firstHeading")
	titleSel        = cascadia.MustCompile("title")
	infoboxSel      = cascadia.MustCompile(`table[class*="infobox"]`)
	imageAnchorSel  = cascadia.MustCompile("a:has(img)")
	figureSel       = cascadia.MustCompile("figure")
	wikibaseSel     = cascadia.MustCompile("li#t-wikibase a[href]")
	sidebarLinkSel  = cascadia.MustCompile("li a[href]")
	pageInfoSel     = cascadia.MustCompile("li#t-info a[href]")
	disambigBoxSel  = cascadia.MustCompile("#disambigbox, .dmbox-disambig, table.disambigbox")
	redirectSel     = cascadia.MustCompile(".redirectMsg, .mw-redirectedfrom")
	searchPageSel   = cascadia.MustCompile(".mw-search-results, .mw-search-nonefound, .mw-search-createlink, #mw-search-top-table")
	optionSel       = cascadia.MustCompile(".mw-parser-output > ul > li")
	boldSel         = cascadia.MustCompile("b")
	linkSel         = cascadia.MustCompile("a[href]")
)

// WikipediaPage is a fetched Wikipedia page.
type WikipediaPage struct {
	// URL is the final URL after redirects.
	URL        string
	SearchTerm string

	doc    *html.Node
	client *Client

	main      *html.Node
	basic     *BasicInfo
	basicErr  error
	basicDone bool
}

// NewWikipediaPage wraps a parsed document. Without a client, BasicInfo
// cannot follow the page-information link and returns nil.
func NewWikipediaPage(doc *html.Node, pageURL string) *WikipediaPage {
	return &WikipediaPage{URL: pageURL, doc: doc}
}

// Document returns the parsed page.
func (p *WikipediaPage) Document() *html.Node { return p.doc }

// Title returns the first heading, or the document title without the
// site suffix.
func (p *WikipediaPage) Title() string {
	if h := first(p.doc, firstHeadingSel); h != nil {
		return text(h)
	}
	t := text(first(p.doc, titleSel))
	if i := strings.LastIndex(t, " - "); i > 0 {
		t = t[:i]
	}
	return t
}

// MainContent returns a cleaned copy of the <main> element, or of
// #mw-content-text for skins without one. Navigation, edit links,
// citation markers and notices are removed. The page itself is not
// modified.
func (p *WikipediaPage) MainContent() *html.Node {
	if p.main != nil {
		return p.main
	}
	src := first(p.doc, mainSel)
	if src == nil {
		src = first(p.doc, contentTextSel)
	}
	if src == nil {
		return nil
	}
	p.main = dom.Clone(src, true)
	detach(p.main, mainRemovals)
	return p.main
}

// LeadParagraph returns a detached copy of the first paragraph of the main
// content whose text is at least MinLeadLen long, classed
// wpage_first_para. It returns nil when no paragraph qualifies.
func (p *WikipediaPage) LeadParagraph() *html.Node {
	for _, para := range all(p.MainContent(), paragraphSel) {
		if len([]rune(strings.TrimSpace(dom.TextContent(para)))) < MinLeadLen {
			continue
		}
		lead := dom.Clone(para, true)
		addClass(lead, LeadParagraphClass)
		return lead
	}
	return nil
}

// InfoBox returns the first table whose class contains "infobox".
func (p *WikipediaPage) InfoBox() *html.Node {
	return first(p.doc, infoboxSel)
}

// InfoBoxFigureAnchor returns the first link in the infobox wrapping an image.
func (p *WikipediaPage) InfoBoxFigureAnchor() *html.Node {
	return first(p.InfoBox(), imageAnchorSel)
}

// FigureBlock returns a detached <div title="figure"> holding a copy of
// the infobox image link, or of the first <figure> in the article when
// there is no infobox image. Links are made absolute. It returns nil when
// the page has neither.
func (p *WikipediaPage) FigureBlock() *html.Node {
	var fig *html.Node
	if a := p.InfoBoxFigureAnchor(); a != nil {
		fig = dom.Clone(a, true)
	} else if f := first(p.MainContent(), figureSel); f != nil {
		fig = dom.Clone(f, true)
	} else {
		return nil
	}
	p.absolutize(fig)
	div := dom.CreateElement("div")
	dom.SetAttribute(div, "title", FigureTitle)
	div.AppendChild(fig)
	return div
}

// absolutize resolves href and src against the page URL and drops srcset.
func (p *WikipediaPage) absolutize(n *html.Node) {
	for _, el := range append([]*html.Node{n}, dom.GetElementsByTagName(n, "*")...) {
		if href := dom.GetAttribute(el, "href"); href != "" {
			dom.SetAttribute(el, "href", resolve(p.URL, href))
		}
		if el.Data != "img" {
			continue
		}
		if src := dom.GetAttribute(el, "src"); src != "" {
			dom.SetAttribute(el, "src", resolve(p.URL, src))
		}
		dom.RemoveAttribute(el, "srcset")
	}
}

// WikidataItemID returns the Q-ID linked from the Tools menu, or "".
func (p *WikipediaPage) WikidataItemID() string {
	if a := first(p.doc, wikibaseSel); a != nil {
		if id := lastSegment(dom.GetAttribute(a, "href")); entityIDPattern.MatchString(id) {
			return strings.ToUpper(id)
		}
	}
	for _, a := range all(p.doc, sidebarLinkSel) {
		if text(a) != "Wikidata item" {
			continue
		}
		if id := lastSegment(dom.GetAttribute(a, "href")); entityIDPattern.MatchString(id) {
			return strings.ToUpper(id)
		}
	}
	return ""
}

// PageInfoURL returns the absolute URL of the "Page information" tool.
func (p *WikipediaPage) PageInfoURL() string {
	a := first(p.doc, pageInfoSel)
	if a == nil {
		return ""
	}
	return resolve(p.URL, dom.GetAttribute(a, "href"))
}

// BasicInfo fetches and parses the page-information table once. It returns
// nil without error when the page has no information link or the page was
// built without a client.
func (p *WikipediaPage) BasicInfo(ctx context.Context) (*BasicInfo, error) {
	if p.basicDone {
		return p.basic, p.basicErr
	}
	infoURL := p.PageInfoURL()
	if infoURL == "" || p.client == nil {
		p.basicDone = true
		return nil, nil
	}
	p.basicDone = true
	doc, _, err := httputil.GetHTML(ctx, p.client.Getter, infoURL)
	if err != nil {
		p.basicErr = fmt.Errorf("fetching page information: %w", err)
		return nil, p.basicErr
	}
	p.basic = ParseBasicInfo(doc)
	return p.basic, nil
}

// SetBasicInfo supplies page information parsed elsewhere.
func (p *WikipediaPage) SetBasicInfo(b *BasicInfo) {
	p.basic = b
	p.basicDone = true
}

// IsDisambiguationPage reports whether the central description marks the
// page as a disambiguation page. Without page information it falls back
// to the disambiguation box and the title.
func (p *WikipediaPage) IsDisambiguationPage(ctx context.Context) bool {
	if b, err := p.BasicInfo(ctx); err == nil && b != nil && b.CentralDescription() != "" {
		return b.CentralDescription() == DisambiguationDescription
	} else if err != nil && p.client != nil {
		p.client.logger().Warn("page information unavailable", "url", p.URL, "error", err)
	}
	return first(p.doc, disambigBoxSel) != nil ||
		strings.HasSuffix(p.Title(), "(disambiguation)")
}

// PageType classifies the page. Search-result pages and pages without
// content are unknown.
func (p *WikipediaPage) PageType(ctx context.Context) PageType {
	if p.doc == nil || p.MainContent() == nil || first(p.doc, searchPageSel) != nil {
		return PageUnknown
	}
	if p.IsDisambiguationPage(ctx) {
		return PageDisambiguation
	}
	title := p.Title()
	if strings.HasPrefix(title, "List of ") || strings.HasPrefix(title, "Lists of ") {
		return PageList
	}
	if first(p.doc, redirectSel) != nil {
		return PageRedirect
	}
	return PageArticle
}

// DisambiguationOption is one entry of a disambiguation list.
type DisambiguationOption struct {
	Title string
	URL   string
	Text  string
}

// DisambiguationOptions lists the linked items of a disambiguation page.
// It returns nil for other pages.
func (p *WikipediaPage) DisambiguationOptions(ctx context.Context) []DisambiguationOption {
	if !p.IsDisambiguationPage(ctx) {
		return nil
	}
	var opts []DisambiguationOption
	for _, li := range all(p.MainContent(), optionSel) {
		a := first(li, linkSel)
		if a == nil {
			continue
		}
		opts = append(opts, DisambiguationOption{
			Title: firstNonEmpty(dom.GetAttribute(a, "title"), text(a)),
			URL:   resolve(p.URL, dom.GetAttribute(a, "href")),
			Text:  text(li),
		})
	}
	return opts
}

// ReadableText extracts the article text with the readability algorithm.
// It works on pages whose markup the selectors above do not recognise.
func (p *WikipediaPage) ReadableText() (string, error) {
	if p.doc == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, p.doc); err != nil {
		return "", err
	}
	u, _ := url.Parse(p.URL)
	article, err := readability.FromReader(&buf, u)
	if err != nil {
		return "", fmt.Errorf("extracting readable text: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

// Bolds returns the text of the <b> elements in a paragraph. In a lead
// paragraph these are the article title and its alternative names.
func Bolds(para *html.Node) []string {
	var out []string
	for _, b := range all(para, boldSel) {
		if t := text(b); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Link is a hyperlink inside a paragraph.
type Link struct {
	Href string
	Text string
}

// Links returns the hyperlinks in a paragraph.
func Links(para *html.Node) []Link {
	var out []Link
	for _, a := range all(para, linkSel) {
		out = append(out, Link{Href: dom.GetAttribute(a, "href"), Text: text(a)})
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
