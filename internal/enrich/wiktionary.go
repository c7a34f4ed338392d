// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/pkg/dictionary"
)

// AddWiktionary attaches the definitions from the entry's Wiktionary page
// in the configured language. The first definition fills Definition when it
// is empty. It reports whether the entry changed.
func (en *Enricher) AddWiktionary(ctx context.Context, e *dictionary.Entry) (bool, error) {
	page, err := en.Lookup.LookupWiktionary(ctx, e.Term)
	if err != nil || page == nil {
		return false, err
	}
	if page.HasNotFoundMessage() {
		en.logger().Info("no wiktionary entry", "term", e.Term)
		return false, nil
	}
	defs := page.Definitions(en.wiktionaryLanguage(), "")
	if len(defs) == 0 {
		en.logger().Info("no wiktionary definitions", "term", e.Term, "language", en.wiktionaryLanguage())
		return false, nil
	}
	if e.Definition == "" || en.Replace {
		e.Definition = defs[0]
	}
	e.AddContent(DefinitionsBlock(defs))
	return true, nil
}

// DefinitionsBlock renders definitions as <ol class="wiktionary_definitions">.
func DefinitionsBlock(defs []string) *html.Node {
	ol := dom.CreateElement("ol")
	dom.SetAttribute(ol, "class", dictionary.DefinitionsClass)
	for _, d := range defs {
		li := dom.CreateElement("li")
		li.AppendChild(dom.CreateTextNode(d))
		ol.AppendChild(li)
	}
	return ol
}
