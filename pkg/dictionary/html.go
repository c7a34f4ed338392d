// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/fileutil"
)

// Role values marking the semantic-HTML structure.
const (
	RoleDictionary = "ami_dictionary"
	RoleEntry      = "ami_entry"
)

// Classes of the typed entry children in the HTML form.
const (
	classDesc       = "dictionary_desc"
	classSynonyms   = "synonyms"
	classWikipedia  = "wikipedia_links"
	classHits       = WikidataHitsType
	classRaw        = "raw"
	termLabel       = "Term:"
	debugStylesheet = "div[role] {border:solid 1px;margin:1px;}"
)

var (
	dictionaryRootSel = cascadia.MustCompile(`div[role="` + RoleDictionary + `"]`)
	spanSel           = cascadia.MustCompile("span")
)

// HTMLDocument renders the dictionary as a semantic-HTML document tree.
func (d *Dictionary) HTMLDocument() *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := dom.CreateElement("html")
	doc.AppendChild(root)

	head := dom.CreateElement("head")
	meta := dom.CreateElement("meta")
	dom.SetAttribute(meta, "charset", "UTF-8")
	head.AppendChild(meta)
	head.AppendChild(textElement("title", d.Title))
	head.AppendChild(textElement("style", debugStylesheet))
	root.AppendChild(head)

	body := dom.CreateElement("body")
	root.AppendChild(body)

	div := dom.CreateElement("div")
	dom.SetAttribute(div, "role", RoleDictionary)
	for _, name := range DictionaryAttributes {
		if v := d.rootAttr(name); v != "" {
			dom.SetAttribute(div, name, v)
		}
	}
	for _, a := range d.Extra {
		dom.SetAttribute(div, a.Name, a.Value)
	}
	body.AppendChild(div)

	if d.Desc != "" {
		p := textElement("p", d.Desc)
		dom.SetAttribute(p, "class", classDesc)
		appendLine(div, p)
	}
	slugs := make(map[string]int)
	for _, e := range d.entries {
		appendLine(div, entryHTML(e, uniqueSlug(e.Label(), slugs)))
	}
	div.AppendChild(dom.CreateTextNode("\n"))
	return doc
}

func entryHTML(e *Entry, id string) *html.Node {
	div := dom.CreateElement("div")
	dom.SetAttribute(div, "role", RoleEntry)
	dom.SetAttribute(div, "id", id)
	for _, name := range EntryAttributes {
		if v := e.attr(name); v != "" {
			dom.SetAttribute(div, name, v)
		}
	}
	for _, a := range e.Extra {
		dom.SetAttribute(div, a.Name, a.Value)
	}

	p := dom.CreateElement("p")
	p.AppendChild(textElement("span", termLabel))
	p.AppendChild(textElement("span", e.Term))
	appendLine(div, p)

	if len(e.Synonyms) > 0 {
		ul := listElement(classSynonyms)
		for _, s := range e.Synonyms {
			li := textElement("li", s.Value)
			if s.Lang != "" {
				dom.SetAttribute(li, attrLang, s.Lang)
			}
			ul.AppendChild(li)
		}
		appendLine(div, ul)
	}
	if len(e.Wikipedia) > 0 {
		ul := listElement(classWikipedia)
		for _, l := range e.Wikipedia {
			li := dom.CreateElement("li")
			if l.Lang != "" {
				dom.SetAttribute(li, attrLang, l.Lang)
			}
			a := textElement("a", l.URL)
			dom.SetAttribute(a, "href", l.URL)
			li.AppendChild(a)
			ul.AppendChild(li)
		}
		appendLine(div, ul)
	}
	if len(e.WikidataHits) > 0 {
		ul := listElement(classHits)
		for _, q := range e.WikidataHits {
			ul.AppendChild(textElement("li", q))
		}
		appendLine(div, ul)
	}
	if e.Raw != nil {
		raw := dom.CreateElement("div")
		dom.SetAttribute(raw, "class", classRaw)
		dom.SetAttribute(raw, AttrWikidataID, e.Raw.String())
		appendLine(div, raw)
	}
	for _, n := range e.Content {
		appendLine(div, dom.Clone(n, true))
	}
	div.AppendChild(dom.CreateTextNode("\n"))
	return div
}

func textElement(tag, text string) *html.Node {
	n := dom.CreateElement(tag)
	if text != "" {
		n.AppendChild(dom.CreateTextNode(text))
	}
	return n
}

func listElement(class string) *html.Node {
	ul := dom.CreateElement("ul")
	dom.SetAttribute(ul, "class", class)
	return ul
}

func appendLine(parent, child *html.Node) {
	parent.AppendChild(dom.CreateTextNode("\n"))
	parent.AppendChild(child)
}

// WriteHTML renders the semantic-HTML form.
func (d *Dictionary) WriteHTML(w io.Writer) error {
	if err := html.Render(w, d.HTMLDocument()); err != nil {
		return fmt.Errorf("writing dictionary HTML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// SaveHTML writes the HTML form to path like SaveXML.
func (d *Dictionary) SaveHTML(path string) error {
	d.EnsureVersion()
	return fileutil.WriteAtomic(path, d.WriteHTML)
}

// FromHTML reads the semantic-HTML form: a div[role=ami_dictionary] with a
// title, holding div[role=ami_entry] children.
func FromHTML(r io.Reader, opts Options) (*Dictionary, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return FromHTMLNode(doc, opts)
}

// FromHTMLFile reads the HTML form from path.
func FromHTMLFile(path string, opts Options) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	defer f.Close()
	d, err := FromHTML(f, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return d, nil
}

// FromHTMLNode builds a dictionary from a parsed document. Content blocks
// are detached from doc and owned by the returned entries.
func FromHTMLNode(doc *html.Node, opts Options) (*Dictionary, error) {
	root := cascadia.Query(doc, dictionaryRootSel)
	if root == nil {
		return nil, &ValidationError{Violations: []Violation{{
			Node: "html", Rule: RuleRootTag, Detail: "no div[role=" + RoleDictionary + "]",
		}}}
	}

	d := newDictionary("", opts)
	for _, a := range root.Attr {
		if a.Key == "role" {
			continue
		}
		d.setRootAttr(a.Key, a.Val)
	}
	if d.Title == "" {
		return nil, &ValidationError{Violations: []Violation{{Node: RoleDictionary, Rule: RuleTitle}}}
	}

	for _, c := range elementChildren(root) {
		switch {
		case dom.GetAttribute(c, "role") == RoleEntry:
			e, err := readHTMLEntry(c)
			if err != nil {
				return nil, err
			}
			if _, err := d.Add(e); err != nil {
				return nil, err
			}
		case hasClass(c, classDesc):
			d.Desc = dom.TextContent(c)
		default:
			d.strayChildren = append(d.strayChildren, c.Data)
		}
	}
	return d, nil
}

func readHTMLEntry(div *html.Node) (*Entry, error) {
	e := &Entry{}
	for _, a := range div.Attr {
		switch a.Key {
		case "role", "id":
			continue
		}
		e.setAttr(a.Key, a.Val)
	}

	for _, c := range elementChildren(div) {
		switch {
		case isTermParagraph(c):
			if e.Term == "" {
				spans := cascadia.QueryAll(c, spanSel)
				e.Term = strings.TrimSpace(dom.TextContent(spans[1]))
			}
		case c.Data == "ul" && hasClass(c, classSynonyms):
			for _, li := range elementChildren(c) {
				e.Synonyms = append(e.Synonyms, Synonym{Lang: dom.GetAttribute(li, attrLang), Value: dom.TextContent(li)})
			}
		case c.Data == "ul" && hasClass(c, classWikipedia):
			for _, li := range elementChildren(c) {
				link := Sitelink{Lang: dom.GetAttribute(li, attrLang), URL: strings.TrimSpace(dom.TextContent(li))}
				if a := dom.QuerySelector(li, "a[href]"); a != nil {
					link.URL = dom.GetAttribute(a, "href")
				}
				e.Wikipedia = append(e.Wikipedia, link)
			}
		case c.Data == "ul" && hasClass(c, classHits):
			for _, li := range elementChildren(c) {
				if q := strings.TrimSpace(dom.TextContent(li)); q != "" {
					e.WikidataHits = append(e.WikidataHits, q)
				}
			}
		case c.Data == "div" && hasClass(c, classRaw):
			e.Raw = ParseRaw(dom.GetAttribute(c, strings.ToLower(AttrWikidataID)))
		default:
			div.RemoveChild(c)
			e.Content = append(e.Content, c)
		}
	}

	if e.Term == "" {
		e.Term = strings.TrimSpace(e.Name)
	}
	if e.Term == "" {
		return nil, &ValidationError{Violations: []Violation{{
			Node: "div#" + dom.GetAttribute(div, "id"), Rule: RuleTerm,
		}}}
	}
	return e, nil
}

// isTermParagraph matches <p><span>Term:</span><span>…</span></p>.
func isTermParagraph(n *html.Node) bool {
	if n.Data != "p" {
		return false
	}
	spans := cascadia.QueryAll(n, spanSel)
	return len(spans) == 2 && strings.TrimSpace(dom.TextContent(spans[0])) == termLabel
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}
