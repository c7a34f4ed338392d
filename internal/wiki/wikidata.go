// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

var (
	wdLabelSel       = cascadia.MustCompile(".wikibase-title-label")
	wdIDSel          = cascadia.MustCompile(".wikibase-title-id")
	wdDescriptionSel = cascadia.MustCompile(".wikibase-entitytermsview-heading-description")
	wdAliasesSel     = cascadia.MustCompile("ul.wikibase-entitytermsview-aliases")
	wdGroupSel       = cascadia.MustCompile("div.wikibase-statementgroupview[id]")
	wdPropLabelSel   = cascadia.MustCompile(".wikibase-statementgroupview-property-label a, .wikibase-statementgroupview-property a")
	wdMainSnakSel    = cascadia.MustCompile(".wikibase-statementview-mainsnak .wikibase-snakview-value")
	wdUnitSel        = cascadia.MustCompile(".wb-unit")
)

var quantityPattern = regexp.MustCompile(`^[-+−]?\d[\d,]*(\.\d+)?(\s|±|$)`)

// SnakKind tags the type of a statement value.
type SnakKind string

const (
	SnakEntity   SnakKind = "entity"
	SnakQuantity SnakKind = "quantity"
	SnakString   SnakKind = "string"
)

// Snak is one statement value. For entities Value is the Q or P id and
// Label its display text; otherwise Value is the displayed text.
type Snak struct {
	Kind  SnakKind
	Value string
	Label string
}

// WikidataProperty is a statement group of an entity page.
type WikidataProperty struct {
	ID     string
	Label  string
	Values []Snak
}

// WikidataPage is a fetched Wikidata entity page.
type WikidataPage struct {
	URL string
	doc *html.Node
}

// NewWikidataPage wraps a parsed entity page.
func NewWikidataPage(doc *html.Node, pageURL string) *WikidataPage {
	return &WikidataPage{URL: pageURL, doc: doc}
}

// Document returns the parsed page.
func (p *WikidataPage) Document() *html.Node { return p.doc }

// Title returns the label in the page language.
func (p *WikidataPage) Title() string {
	return text(first(p.doc, wdLabelSel))
}

// QID returns the id shown beside the label, without parentheses.
func (p *WikidataPage) QID() string {
	return strings.Trim(text(first(p.doc, wdIDSel)), "()")
}

// Description returns the entity description in the page language.
func (p *WikidataPage) Description() string {
	return text(first(p.doc, wdDescriptionSel))
}

// Aliases returns the "also known as" list in the page language.
func (p *WikidataPage) Aliases() []string {
	ul := first(p.doc, wdAliasesSel)
	if ul == nil {
		return nil
	}
	var out []string
	for _, li := range elementChildren(ul) {
		if t := text(li); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// PropertyIDs returns the ids of the statement groups in page order.
func (p *WikidataPage) PropertyIDs() []string {
	var ids []string
	for _, g := range all(p.doc, wdGroupSel) {
		ids = append(ids, groupID(g))
	}
	return ids
}

// Properties returns every statement group with its values.
func (p *WikidataPage) Properties() []WikidataProperty {
	var props []WikidataProperty
	for _, g := range all(p.doc, wdGroupSel) {
		props = append(props, parseGroup(g))
	}
	return props
}

// ValuesForProperty returns the values of property pid, or nil.
func (p *WikidataPage) ValuesForProperty(pid string) []Snak {
	for _, g := range all(p.doc, wdGroupSel) {
		if groupID(g) == pid {
			return parseGroup(g).Values
		}
	}
	return nil
}

// HasStatement reports whether property pid has the entity qid as a value.
func (p *WikidataPage) HasStatement(pid, qid string) bool {
	for _, v := range p.ValuesForProperty(pid) {
		if v.Kind == SnakEntity && v.Value == qid {
			return true
		}
	}
	return false
}

// Sitelinks maps each requested language to its Wikipedia article URL.
// Languages without a sitelink are absent.
func (p *WikidataPage) Sitelinks(langs []string) map[string]string {
	links := make(map[string]string)
	for _, lang := range langs {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		sel, err := cascadia.Compile(`li[data-wb-siteid="` + lang + `wiki"] a[hreflang]`)
		if err != nil {
			continue
		}
		if a := first(p.doc, sel); a != nil {
			links[lang] = dom.GetAttribute(a, "href")
		}
	}
	return links
}

func groupID(g *html.Node) string {
	if id := dom.GetAttribute(g, "data-property-id"); id != "" {
		return id
	}
	return dom.GetAttribute(g, "id")
}

func parseGroup(g *html.Node) WikidataProperty {
	prop := WikidataProperty{ID: groupID(g), Label: text(first(g, wdPropLabelSel))}
	for _, v := range all(g, wdMainSnakSel) {
		prop.Values = append(prop.Values, parseSnak(v))
	}
	return prop
}

func parseSnak(v *html.Node) Snak {
	for _, a := range dom.GetElementsByTagName(v, "a") {
		title := strings.TrimPrefix(dom.GetAttribute(a, "title"), "Property:")
		if entityIDPattern.MatchString(title) {
			return Snak{Kind: SnakEntity, Value: title, Label: text(a)}
		}
	}
	t := text(v)
	if first(v, wdUnitSel) != nil || quantityPattern.MatchString(t) {
		return Snak{Kind: SnakQuantity, Value: t}
	}
	return Snak{Kind: SnakString, Value: t}
}
