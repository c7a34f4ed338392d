// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encyclopedia

import (
	"fmt"
	"io"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/fileutil"
	"github.com/pdiddy/amidict/pkg/dictionary"
)

// Markup of the normalized encyclopedia.
const (
	RoleEncyclopedia = "ami_encyclopedia"
	SynonymListClass = "synonym_list"
	AliasListClass   = "alias_list"
	DescriptionClass = "wikidata_description"

	// WikidataPageBase prefixes a Q-ID to link its Wikidata page.
	WikidataPageBase = "https://www.wikidata.org/wiki/"
)

// HTMLDocument renders one div[role=ami_entry] per concept inside a
// div[role=ami_encyclopedia]. When no entry has a valid Q-ID the entries
// are listed as they are.
func (enc *Encyclopedia) HTMLDocument() *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := dom.CreateElement("html")
	doc.AppendChild(root)

	head := dom.CreateElement("head")
	meta := dom.CreateElement("meta")
	dom.SetAttribute(meta, "charset", "UTF-8")
	head.AppendChild(meta)
	head.AppendChild(textElement("title", enc.Title))
	root.AppendChild(head)

	body := dom.CreateElement("body")
	root.AppendChild(body)
	div := dom.CreateElement("div")
	dom.SetAttribute(div, "role", RoleEncyclopedia)
	dom.SetAttribute(div, "title", enc.Title)
	body.AppendChild(div)

	concepts := enc.Concepts()
	if len(concepts) == 0 {
		for _, e := range enc.entries {
			appendLine(div, unresolvedHTML(e))
		}
	}
	for _, c := range concepts {
		appendLine(div, conceptHTML(c))
	}
	div.AppendChild(dom.CreateTextNode("\n"))
	return doc
}

func conceptHTML(c *Concept) *html.Node {
	div := dom.CreateElement("div")
	dom.SetAttribute(div, "role", dictionary.RoleEntry)
	dom.SetAttribute(div, dictionary.AttrWikidataID, c.WikidataID)
	dom.SetAttribute(div, dictionary.AttrTerm, c.CanonicalTerm)

	appendLine(div, link(WikidataPageBase+c.WikidataID, c.WikidataID))
	if c.WikipediaURL != "" {
		appendLine(div, link(c.WikipediaURL, c.PageTitle))
	}

	ul := dom.CreateElement("ul")
	dom.SetAttribute(ul, "class", SynonymListClass)
	for _, s := range c.Synonyms {
		ul.AppendChild(textElement("li", s))
	}
	appendLine(div, ul)

	if len(c.Aliases) > 0 {
		ul := dom.CreateElement("ul")
		dom.SetAttribute(ul, "class", AliasListClass)
		for _, a := range c.Aliases {
			ul.AppendChild(textElement("li", a))
		}
		appendLine(div, ul)
	}
	if c.Description != "" {
		p := textElement("p", c.Description)
		dom.SetAttribute(p, "class", DescriptionClass)
		appendLine(div, p)
	}
	if c.Lead != nil {
		appendLine(div, dom.Clone(c.Lead, true))
	}
	if c.Figure != nil {
		appendLine(div, dom.Clone(c.Figure, true))
	}
	div.AppendChild(dom.CreateTextNode("\n"))
	return div
}

// unresolvedHTML renders an entry that belongs to no concept.
func unresolvedHTML(e *dictionary.Entry) *html.Node {
	div := dom.CreateElement("div")
	dom.SetAttribute(div, "role", dictionary.RoleEntry)
	dom.SetAttribute(div, dictionary.AttrTerm, e.Term)
	if e.Name != "" {
		dom.SetAttribute(div, dictionary.AttrName, e.Name)
	}
	if e.WikipediaPage != "" {
		appendLine(div, link(e.WikipediaPage, e.Label()))
	}
	if n := e.LeadParagraph(); n != nil {
		appendLine(div, dom.Clone(n, true))
	}
	if n := e.Figure(); n != nil {
		appendLine(div, dom.Clone(n, true))
	}
	div.AppendChild(dom.CreateTextNode("\n"))
	return div
}

func link(href, text string) *html.Node {
	a := textElement("a", text)
	dom.SetAttribute(a, "href", href)
	return a
}

func textElement(tag, text string) *html.Node {
	n := dom.CreateElement(tag)
	if text != "" {
		n.AppendChild(dom.CreateTextNode(text))
	}
	return n
}

func appendLine(parent, child *html.Node) {
	parent.AppendChild(dom.CreateTextNode("\n"))
	parent.AppendChild(child)
}

// WriteNormalizedHTML renders the normalized encyclopedia.
func (enc *Encyclopedia) WriteNormalizedHTML(w io.Writer) error {
	if err := html.Render(w, enc.HTMLDocument()); err != nil {
		return fmt.Errorf("writing encyclopedia HTML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// SaveNormalizedHTML writes the normalized encyclopedia to path, creating
// parent directories.
func (enc *Encyclopedia) SaveNormalizedHTML(path string) error {
	return fileutil.WriteAtomic(path, enc.WriteNormalizedHTML)
}
