// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate marks dictionary terms in HTML paragraphs with links to
// their Wikidata items and indexes where each term was found.
package annotate

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/pkg/dictionary"
)

// ErrPattern is returned when the phrase set cannot be compiled into a
// single pattern. No document is annotated in that case.
var ErrPattern = errors.New("invalid annotation pattern")

// AnnotationClass is set on every inserted anchor.
const AnnotationClass = "annotation"

// DefaultParagraphSelector selects the blocks that are annotated.
const DefaultParagraphSelector = "p"

// DefaultContextChars is how much text around a match the index shows.
const DefaultContextChars = 40

// Phrase is one term to find, with the link target and tooltip of the
// anchor that wraps it.
type Phrase struct {
	Text  string
	Href  string
	Title string
}

// PhrasesFromDictionary returns one phrase per entry term. Entries with a
// valid Q-ID link to the Wikidata entity; the tooltip is the entry label.
func PhrasesFromDictionary(d *dictionary.Dictionary) []Phrase {
	phrases := make([]Phrase, 0, d.Len())
	for _, e := range d.Entries() {
		p := Phrase{Text: e.Term, Title: e.Label()}
		if dictionary.IsValidWikidataID(e.WikidataID) {
			p.Href = dictionary.WikidataEntityBase + e.WikidataID
		}
		phrases = append(phrases, p)
	}
	return phrases
}

// Options configures an Annotator.
type Options struct {
	// Regex reads phrase texts as regular-expression fragments. By default
	// they are matched literally.
	Regex bool

	// ParagraphSelector is a CSS selector (default DefaultParagraphSelector).
	ParagraphSelector string

	// ContextChars bounds the before and after text kept per match.
	ContextChars int
}

// Match is one annotated occurrence in an indexed paragraph.
type Match struct {
	Document    string `json:"document" yaml:"document"`
	ParagraphID string `json:"paragraph_id" yaml:"paragraph_id"`
	Term        string `json:"term" yaml:"term"`
	Text        string `json:"text" yaml:"text"`
	Href        string `json:"href,omitempty" yaml:"href,omitempty"`
	Before      string `json:"before,omitempty" yaml:"before,omitempty"`
	After       string `json:"after,omitempty" yaml:"after,omitempty"`
}

// Anchor returns the document#paragraph reference of the match.
func (m Match) Anchor() string {
	return m.Document + "#" + m.ParagraphID
}

// Result collects the matches of one annotation pass. Counts covers every
// inserted anchor, including those in paragraphs without an id.
type Result struct {
	Document    string
	Paragraphs  int
	Annotations int
	Matches     []Match
	Counts      map[string]int
}

// Terms returns the indexed terms in the order first matched, followed
// by the terms only seen in unindexed paragraphs, sorted.
func (r *Result) Terms() []string {
	var terms []string
	for _, m := range r.Matches {
		if !slices.Contains(terms, m.Term) {
			terms = append(terms, m.Term)
		}
	}
	var rest []string
	for t := range r.Counts {
		if !slices.Contains(terms, t) {
			rest = append(rest, t)
		}
	}
	slices.Sort(rest)
	return append(terms, rest...)
}

// Annotator wraps phrase occurrences in anchors. It compiles all phrases
// into one case-insensitive alternation, longest phrase first, so that a
// longer phrase wins over a phrase it contains.
type Annotator struct {
	Logger *slog.Logger

	phrases  []Phrase
	groups   []int
	pattern  *regexp.Regexp
	anchored []*regexp.Regexp
	selector cascadia.Sel
	context  int
}

// New compiles the phrases. Blank and repeated (case-insensitive) phrases
// are dropped.
func New(phrases []Phrase, opts Options, logger *slog.Logger) (*Annotator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sel := opts.ParagraphSelector
	if sel == "" {
		sel = DefaultParagraphSelector
	}
	compiled, err := cascadia.Parse(sel)
	if err != nil {
		return nil, fmt.Errorf("parsing paragraph selector %q: %w", sel, err)
	}
	ctxChars := opts.ContextChars
	if ctxChars <= 0 {
		ctxChars = DefaultContextChars
	}

	a := &Annotator{
		Logger:   logger.With("component", "annotate"),
		phrases:  sortPhrases(phrases),
		selector: compiled,
		context:  ctxChars,
	}
	if len(a.phrases) == 0 {
		return nil, fmt.Errorf("%w: no phrases", ErrPattern)
	}
	if err := a.compile(opts.Regex); err != nil {
		a.Logger.Error("cannot compile phrases", "error", err)
		return nil, err
	}
	return a, nil
}

// sortPhrases trims, deduplicates and orders phrases longest first. Ties
// keep their input order.
func sortPhrases(in []Phrase) []Phrase {
	seen := make(map[string]bool)
	var out []Phrase
	for _, p := range in {
		p.Text = strings.TrimSpace(p.Text)
		k := strings.ToLower(p.Text)
		if p.Text == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b Phrase) int {
		return utf8.RuneCountInString(b.Text) - utf8.RuneCountInString(a.Text)
	})
	return out
}

// compile builds (?i)(p1)|(p2)|... and records the submatch group of each
// phrase so a match can be traced back to its phrase. Each phrase is also
// compiled on its own, anchored, for retrying a position whose longest
// match fails the word-boundary test.
func (a *Annotator) compile(asRegex bool) error {
	parts := make([]string, len(a.phrases))
	a.groups = make([]int, len(a.phrases))
	a.anchored = make([]*regexp.Regexp, len(a.phrases))
	group := 1
	for i, p := range a.phrases {
		frag := literal(p.Text)
		subexp := 0
		if asRegex {
			frag = p.Text
			re, err := regexp.Compile(frag)
			if err != nil {
				return fmt.Errorf("%w: phrase %q: %v", ErrPattern, p.Text, err)
			}
			subexp = re.NumSubexp()
		}
		re, err := regexp.Compile("(?i)^(?:" + frag + ")")
		if err != nil {
			return fmt.Errorf("%w: phrase %q: %v", ErrPattern, p.Text, err)
		}
		a.anchored[i] = re
		parts[i] = "((?:" + frag + "))"
		a.groups[i] = group
		group += 1 + subexp
	}
	re, err := regexp.Compile("(?i)" + strings.Join(parts, "|"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPattern, err)
	}
	a.pattern = re
	return nil
}

// wordGap matches the space between two words of a phrase, including
// no-break and other Unicode spaces.
const wordGap = `[\s\p{Z}]+`

// literal quotes a phrase, letting any run of whitespace match wordGap.
func literal(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, wordGap)
}

// isWordRune reports whether r belongs to a word. Unlike RE2's \b it
// covers every script, so "café" does not match inside "cafés".
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// startsWord reports whether a match starting at text[start] does not
// continue a word. Matches beginning with a non-word rune always pass.
func startsWord(text string, start int) bool {
	first, _ := utf8.DecodeRuneInString(text[start:])
	if !isWordRune(first) || start == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(prev)
}

// endsWord is the counterpart of startsWord for text[start:end].
func endsWord(text string, start, end int) bool {
	last, _ := utf8.DecodeLastRuneInString(text[start:end])
	if !isWordRune(last) || end == len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

// span is one accepted match: byte offsets and the phrase index.
type span struct {
	start, end, phrase int
}

// find returns the non-overlapping whole-word matches in text, leftmost
// first. When the longest phrase at a position runs into a neighbouring
// word, the shorter phrases are tried at the same position.
func (a *Annotator) find(text string) []span {
	var spans []span
	for pos := 0; pos < len(text); {
		loc := a.pattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if sp, ok := a.accept(text, start, end, a.phraseIndex(loc)); ok {
			spans = append(spans, sp)
			pos = sp.end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + max(size, 1)
	}
	return spans
}

func (a *Annotator) accept(text string, start, end, phrase int) (span, bool) {
	if end == start || !startsWord(text, start) {
		return span{}, false
	}
	if endsWord(text, start, end) {
		return span{start, end, phrase}, true
	}
	for i, re := range a.anchored {
		loc := re.FindStringIndex(text[start:])
		if loc == nil || loc[1] == 0 {
			continue
		}
		if endsWord(text, start, start+loc[1]) {
			return span{start, start + loc[1], i}, true
		}
	}
	return span{}, false
}

// Pattern returns the compiled alternation.
func (a *Annotator) Pattern() string {
	return a.pattern.String()
}

// AnnotateDocument annotates every selected block of doc in place. Blocks
// with an id attribute are indexed as docName#id.
func (a *Annotator) AnnotateDocument(doc *html.Node, docName string) *Result {
	res := &Result{Document: docName, Counts: make(map[string]int)}
	for _, p := range cascadia.QueryAll(doc, a.selector) {
		if insideAnchor(p) {
			continue
		}
		res.Paragraphs++
		id := dom.GetAttribute(p, "id")
		for _, m := range a.annotateBlock(p) {
			res.Annotations++
			res.Counts[m.Term]++
			if id == "" {
				continue
			}
			m.Document, m.ParagraphID = docName, id
			res.Matches = append(res.Matches, m)
		}
	}
	a.Logger.Debug("annotated document",
		"document", docName, "paragraphs", res.Paragraphs,
		"annotations", res.Annotations, "indexed", len(res.Matches))
	return res
}

// annotateBlock annotates the text nodes under n that are not inside a
// link, returning the matches in document order.
func (a *Annotator) annotateBlock(n *html.Node) []Match {
	var texts []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for c := c.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				texts = append(texts, c)
			case c.Type == html.ElementNode && c.Data != "a":
				walk(c)
			}
		}
	}
	walk(n)

	var matches []Match
	for _, t := range texts {
		matches = append(matches, a.annotateText(t)...)
	}
	return matches
}

// annotateText splits text node t around each match, applying the matches
// from the last to the first so earlier offsets stay valid.
func (a *Annotator) annotateText(t *html.Node) []Match {
	text := t.Data
	spans := a.find(text)
	if len(spans) == 0 {
		return nil
	}

	matches := make([]Match, len(spans))
	for i := len(spans) - 1; i >= 0; i-- {
		start, end := spans[i].start, spans[i].end
		p := a.phrases[spans[i].phrase]
		matched := text[start:end]

		anchor := dom.CreateElement("a")
		dom.SetAttribute(anchor, "class", AnnotationClass)
		if p.Href != "" {
			dom.SetAttribute(anchor, "href", p.Href)
		}
		if p.Title != "" {
			dom.SetAttribute(anchor, "title", p.Title)
		}
		anchor.AppendChild(dom.CreateTextNode(matched))

		if tail := t.Data[end:]; tail != "" {
			t.Parent.InsertBefore(dom.CreateTextNode(tail), t.NextSibling)
		}
		t.Parent.InsertBefore(anchor, t.NextSibling)
		t.Data = t.Data[:start]

		matches[i] = Match{
			Term:   p.Text,
			Text:   matched,
			Href:   p.Href,
			Before: lastRunes(text[:start], a.context),
			After:  firstRunes(text[end:], a.context),
		}
	}
	if t.Data == "" {
		t.Parent.RemoveChild(t)
	}
	return matches
}

// phraseIndex maps a match of the alternation back to its phrase.
func (a *Annotator) phraseIndex(loc []int) int {
	for i, g := range a.groups {
		if loc[2*g] >= 0 {
			return i
		}
	}
	return 0
}

func insideAnchor(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "a" {
			return true
		}
	}
	return false
}

func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[len(r)-n:])
}

func firstRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
