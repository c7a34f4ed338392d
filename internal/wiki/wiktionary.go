// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Phrases Wiktionary shows when it has no entry for a term.
var notFoundMessages = []string{
	"Wiktionary does not yet have an entry for",
	"did not match any documents",
}

// PartsOfSpeech lists the headings recognised as parts of speech.
var PartsOfSpeech = []string{
	"Noun", "Proper noun", "Verb", "Adjective", "Adverb", "Preposition",
	"Pronoun", "Conjunction", "Interjection", "Determiner", "Numeral",
	"Article", "Particle", "Phrase", "Prefix", "Suffix", "Symbol",
}

var (
	mwParserOutputSel = cascadia.MustCompile("#mw-content-text .mw-parser-output")
	bodyContentSel    = cascadia.MustCompile("#bodyContent, body")
	definitionNoise   = cascadia.MustCompile("ul, dl, ol, .HQToggle, .nyms-toggle, style")
	editSectionSel    = cascadia.MustCompile(".mw-editsection")
)

// PartOfSpeech is one part-of-speech section of a language.
type PartOfSpeech struct {
	Name        string
	Headword    string
	Definitions []string
}

// LanguageSection groups the parts of speech under one language heading.
type LanguageSection struct {
	Language string
	Parts    []PartOfSpeech
}

// WiktionaryPage is a fetched Wiktionary entry.
type WiktionaryPage struct {
	URL  string
	Term string
	doc  *html.Node
}

// NewWiktionaryPage wraps a parsed entry page.
func NewWiktionaryPage(doc *html.Node, pageURL string) *WiktionaryPage {
	return &WiktionaryPage{URL: pageURL, doc: doc}
}

// MWContent returns the parsed article body, or nil.
func (p *WiktionaryPage) MWContent() *html.Node {
	if n := first(p.doc, mwParserOutputSel); n != nil {
		return n
	}
	return first(p.doc, contentTextSel)
}

// HasNotFoundMessage reports whether the page says the entry is missing.
func (p *WiktionaryPage) HasNotFoundMessage() bool {
	body := first(p.doc, bodyContentSel)
	if body == nil {
		return false
	}
	t := text(body)
	for _, msg := range notFoundMessages {
		if strings.Contains(t, msg) {
			return true
		}
	}
	return false
}

// SplitByLanguage walks the article body and groups definitions by
// language (level-2 headings) and part of speech (lower headings whose
// title starts with a part-of-speech name). Definitions are the items of
// the first ordered list after a part-of-speech heading.
func (p *WiktionaryPage) SplitByLanguage() []LanguageSection {
	content := p.MWContent()
	if content == nil || p.HasNotFoundMessage() {
		return nil
	}

	var (
		sections []LanguageSection
		lang     *LanguageSection
		pos      *PartOfSpeech
	)
	flush := func() {
		if pos != nil && lang != nil {
			lang.Parts = append(lang.Parts, *pos)
		}
		pos = nil
	}

	for _, n := range flatten(content) {
		if level, title := heading(n); level > 0 {
			switch {
			case level == 2:
				flush()
				sections = append(sections, LanguageSection{Language: title})
				lang = &sections[len(sections)-1]
			case partOfSpeech(title) != "":
				flush()
				pos = &PartOfSpeech{Name: title}
			default:
				flush()
			}
			continue
		}
		if pos == nil {
			continue
		}
		switch n.Data {
		case "p":
			if pos.Headword == "" {
				pos.Headword = text(n)
			}
		case "ol":
			if len(pos.Definitions) == 0 {
				pos.Definitions = definitions(n)
			}
		}
	}
	flush()
	return sections
}

// Definitions returns the definitions for a language and part of speech.
// An empty pos matches every part of speech of the language.
func (p *WiktionaryPage) Definitions(language, pos string) []string {
	var out []string
	for _, s := range p.SplitByLanguage() {
		if !strings.EqualFold(s.Language, language) {
			continue
		}
		for _, part := range s.Parts {
			if pos == "" || strings.EqualFold(part.Name, pos) {
				out = append(out, part.Definitions...)
			}
		}
	}
	return out
}

// flatten lists the block elements of the body in document order,
// descending into the section wrappers newer skins add but not into
// headings, paragraphs or lists.
func flatten(n *html.Node) []*html.Node {
	var out []*html.Node
	for _, c := range elementChildren(n) {
		if level, _ := heading(c); level > 0 {
			out = append(out, c)
			continue
		}
		switch c.Data {
		case "section", "div":
			out = append(out, flatten(c)...)
		default:
			out = append(out, c)
		}
	}
	return out
}

// heading returns the level and title of an h2..h5 element or of a
// div.mw-heading wrapper, or 0.
func heading(n *html.Node) (int, string) {
	if n.Type != html.ElementNode {
		return 0, ""
	}
	if n.Data == "div" && strings.Contains(dom.ClassName(n), "mw-heading") {
		for _, c := range elementChildren(n) {
			if level, title := heading(c); level > 0 {
				return level, title
			}
		}
		return 0, ""
	}
	switch n.Data {
	case "h2", "h3", "h4", "h5":
		h := dom.Clone(n, true)
		detach(h, editSectionSel)
		return int(n.Data[1] - '0'), text(h)
	}
	return 0, ""
}

func partOfSpeech(title string) string {
	for _, name := range PartsOfSpeech {
		if title == name || strings.HasPrefix(title, name+" ") {
			return name
		}
	}
	return ""
}

func definitions(ol *html.Node) []string {
	var out []string
	for _, li := range elementChildren(ol) {
		if li.Data != "li" {
			continue
		}
		c := dom.Clone(li, true)
		detach(c, definitionNoise)
		if t := text(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}
