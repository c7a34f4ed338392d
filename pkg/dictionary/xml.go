// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/pdiddy/amidict/internal/fileutil"
	"github.com/pdiddy/amidict/internal/httputil"
)

// XML element names.
const (
	elemDictionary  = "dictionary"
	elemDesc        = "desc"
	elemEntry       = "entry"
	elemSynonym     = "synonym"
	elemWikipedia   = "wikipedia"
	elemWikidataHit = "wikidataHit"
	elemRaw         = "raw"

	attrLang = "lang"
	attrType = "type"

	// WikidataHitsType is the type attribute of every wikidataHit child.
	WikidataHitsType = "wikidata_hits"
)

func xmlName(local string) xml.Name { return xml.Name{Local: local} }

func xmlAttr(name, value string) xml.Attr {
	return xml.Attr{Name: xmlName(name), Value: value}
}

// WriteXML writes the canonical XML form. Entries and their typed children
// are indented one per line; content blocks are written as they are.
func (d *Dictionary) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	x := &xmlWriter{enc: enc}

	var attrs []xml.Attr
	for _, name := range DictionaryAttributes {
		if v := d.rootAttr(name); v != "" {
			attrs = append(attrs, xmlAttr(name, v))
		}
	}
	for _, a := range d.Extra {
		attrs = append(attrs, xmlAttr(a.Name, a.Value))
	}
	root := xml.StartElement{Name: xmlName(elemDictionary), Attr: attrs}
	x.token(root)

	if d.Desc != "" {
		x.indent(1)
		x.textElement(elemDesc, nil, d.Desc)
	}
	for _, e := range d.entries {
		x.indent(1)
		x.entry(e)
	}
	if d.Desc != "" || len(d.entries) > 0 {
		x.indent(0)
	}
	x.token(root.End())
	x.token(xml.CharData("\n"))

	if x.err != nil {
		return fmt.Errorf("writing dictionary XML: %w", x.err)
	}
	return enc.Flush()
}

type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func (x *xmlWriter) token(t xml.Token) {
	if x.err == nil {
		x.err = x.enc.EncodeToken(t)
	}
}

func (x *xmlWriter) indent(level int) {
	x.token(xml.CharData("\n" + strings.Repeat("  ", level)))
}

func (x *xmlWriter) textElement(name string, attrs []xml.Attr, text string) {
	start := xml.StartElement{Name: xmlName(name), Attr: attrs}
	x.token(start)
	if text != "" {
		x.token(xml.CharData(text))
	}
	x.token(start.End())
}

func (x *xmlWriter) entry(e *Entry) {
	var attrs []xml.Attr
	for _, name := range EntryAttributes {
		if v := e.attr(name); v != "" {
			attrs = append(attrs, xmlAttr(name, v))
		}
	}
	for _, a := range e.Extra {
		attrs = append(attrs, xmlAttr(a.Name, a.Value))
	}
	start := xml.StartElement{Name: xmlName(elemEntry), Attr: attrs}
	x.token(start)

	children := 0
	child := func() {
		children++
		x.indent(2)
	}
	for _, s := range e.Synonyms {
		child()
		x.textElement(elemSynonym, langAttr(s.Lang), s.Value)
	}
	for _, l := range e.Wikipedia {
		child()
		x.textElement(elemWikipedia, langAttr(l.Lang), l.URL)
	}
	for _, q := range e.WikidataHits {
		child()
		x.textElement(elemWikidataHit, []xml.Attr{xmlAttr(attrType, WikidataHitsType)}, q)
	}
	if e.Raw != nil {
		child()
		x.textElement(elemRaw, []xml.Attr{xmlAttr(AttrWikidataID, e.Raw.String())}, "")
	}
	for _, n := range e.Content {
		child()
		x.node(n)
	}
	if children > 0 {
		x.indent(1)
	}
	x.token(start.End())
}

func langAttr(lang string) []xml.Attr {
	if lang == "" {
		return nil
	}
	return []xml.Attr{xmlAttr(attrLang, lang)}
}

// node writes an HTML subtree as XML tokens.
func (x *xmlWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		x.token(xml.CharData(n.Data))
	case html.CommentNode:
		x.token(xml.Comment(strings.ReplaceAll(n.Data, "--", "- -")))
	case html.ElementNode:
		start := xml.StartElement{Name: xmlName(n.Data)}
		for _, a := range n.Attr {
			start.Attr = append(start.Attr, xmlAttr(a.Key, a.Val))
		}
		x.token(start)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			x.node(c)
		}
		x.token(start.End())
	}
}

// FromXML reads the XML form. The root must be <dictionary> with a title;
// other schema rules are left to Validate.
func FromXML(r io.Reader, opts Options) (*Dictionary, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	root, err := firstElement(dec)
	if err != nil {
		return nil, err
	}
	if root.Name.Local != elemDictionary {
		return nil, &ValidationError{Violations: []Violation{{
			Node: root.Name.Local, Rule: RuleRootTag, Detail: "expected " + elemDictionary,
		}}}
	}

	d := newDictionary("", opts)
	for _, a := range root.Attr {
		d.setRootAttr(a.Name.Local, a.Value)
	}
	if d.Title == "" {
		return nil, &ValidationError{Violations: []Violation{{Node: elemDictionary, Rule: RuleTitle}}}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseErr(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return d, nil
		case xml.StartElement:
			switch t.Name.Local {
			case elemEntry:
				e, err := readEntry(dec, t)
				if err != nil {
					return nil, err
				}
				if _, err := d.Add(e); err != nil {
					return nil, err
				}
			case elemDesc:
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				d.Desc = text
			default:
				d.strayChildren = append(d.strayChildren, t.Name.Local)
				if err := dec.Skip(); err != nil {
					return nil, parseErr(err)
				}
			}
		}
	}
}

// FromXMLFile reads the XML form from path.
func FromXMLFile(path string, opts Options) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary: %w", err)
	}
	defer f.Close()
	d, err := FromXML(f, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
		}
		return nil, err
	}
	return d, nil
}

func parseErr(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &ParseError{Err: err}
}

func firstElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, parseErr(err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func readEntry(dec *xml.Decoder, start xml.StartElement) (*Entry, error) {
	e := &Entry{}
	for _, a := range start.Attr {
		e.setAttr(a.Name.Local, a.Value)
	}
	if e.Term == "" {
		e.Term = strings.TrimSpace(e.Name)
	}
	if e.Term == "" {
		return nil, &ValidationError{Violations: []Violation{{Node: elemEntry, Rule: RuleTerm}}}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseErr(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return e, nil
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case strings.EqualFold(name, elemSynonym):
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				e.Synonyms = append(e.Synonyms, Synonym{Lang: attrValue(t, attrLang), Value: text})
			case strings.EqualFold(name, elemWikipedia):
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				e.Wikipedia = append(e.Wikipedia, Sitelink{Lang: attrValue(t, attrLang), URL: strings.TrimSpace(text)})
			case strings.EqualFold(name, elemWikidataHit):
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				if q := strings.TrimSpace(text); q != "" {
					e.WikidataHits = append(e.WikidataHits, q)
				}
			case strings.EqualFold(name, elemRaw):
				e.Raw = ParseRaw(attrValue(t, AttrWikidataID))
				if err := dec.Skip(); err != nil {
					return nil, parseErr(err)
				}
			default:
				n, err := readNode(dec, t, nil)
				if err != nil {
					return nil, err
				}
				e.Content = append(e.Content, n)
			}
		}
	}
}

func attrValue(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

// readText collects the character data up to the end of the current
// element, descending into any nested elements.
func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", parseErr(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return b.String(), nil
			}
			depth--
		}
	}
}

// readNode builds an HTML element tree from the XML element opened by start.
func readNode(dec *xml.Decoder, start xml.StartElement, prefixes map[string]string) (*html.Node, error) {
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" {
			prefixes = maps.Clone(prefixes)
			if prefixes == nil {
				prefixes = make(map[string]string)
			}
			prefixes[a.Value] = a.Name.Local
		}
	}
	name := qualifiedName(start.Name, prefixes)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
	for _, a := range start.Attr {
		if a.Name.Space == "" && a.Name.Local == "xmlns" {
			continue
		}
		n.Attr = append(n.Attr, html.Attribute{Key: qualifiedName(a.Name, prefixes), Val: a.Value})
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseErr(err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return n, nil
		case xml.StartElement:
			c, err := readNode(dec, t, prefixes)
			if err != nil {
				return nil, err
			}
			n.AppendChild(c)
		case xml.CharData:
			if last := n.LastChild; last != nil && last.Type == html.TextNode {
				last.Data += string(t)
				continue
			}
			n.AppendChild(&html.Node{Type: html.TextNode, Data: string(t)})
		case xml.Comment:
			n.AppendChild(&html.Node{Type: html.CommentNode, Data: string(t)})
		}
	}
}

// xmlNamespace is what the decoder reports for the reserved xml: prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// qualifiedName restores the prefix the decoder resolved to a namespace
// URL, so xml:lang and declared prefixes are written back as read. Names
// in a default namespace keep only their local part.
func qualifiedName(name xml.Name, prefixes map[string]string) string {
	switch name.Space {
	case "":
		return name.Local
	case xmlNamespace:
		return "xml:" + name.Local
	case "xmlns":
		return "xmlns:" + name.Local
	}
	if p, ok := prefixes[name.Space]; ok {
		return p + ":" + name.Local
	}
	if !strings.Contains(name.Space, ":") {
		// an undeclared prefix is left unresolved by the decoder
		return name.Space + ":" + name.Local
	}
	return name.Local
}

// Load reads a dictionary from path in either form. The form is chosen by
// extension, or by sniffing the content when the extension is unknown.
func Load(path string, opts Options) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return parseSource(path, path, data, opts)
}

// FromURL fetches a dictionary in either form. The form is chosen as in
// Load, from the extension of the final URL path or by sniffing the body.
func FromURL(ctx context.Context, g httputil.Getter, rawURL string, opts Options) (*Dictionary, error) {
	resp, err := g.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching dictionary: %w", err)
	}
	name := rawURL
	if u, err := url.Parse(resp.URL); err == nil && resp.URL != "" {
		name = u.Path
	}
	return parseSource(rawURL, name, resp.Body, opts)
}

// IsURL reports whether source names an http or https resource.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func parseSource(source, name string, data []byte, opts Options) (*Dictionary, error) {
	var (
		d   *Dictionary
		err error
	)
	if isXML(name, data) {
		d, err = FromXML(bytes.NewReader(data), opts)
	} else {
		d, err = FromHTML(bytes.NewReader(data), opts)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = source
		}
		return nil, err
	}
	return d, nil
}

func isXML(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return true
	case ".html", ".htm", ".xhtml":
		return false
	}
	head := bytes.TrimSpace(data)
	return bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<"+elemDictionary))
}

// SaveXML writes the XML form to path, creating parent directories. The
// file is replaced atomically. A missing version is set first.
func (d *Dictionary) SaveXML(path string) error {
	d.EnsureVersion()
	return fileutil.WriteAtomic(path, d.WriteXML)
}

// Save writes the HTML form for .html and .htm paths and XML otherwise.
func (d *Dictionary) Save(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return d.SaveHTML(path)
	}
	return d.SaveXML(path)
}
