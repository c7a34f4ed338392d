// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"regexp"
	"slices"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Entry attribute names as written in the XML form.
const (
	AttrTerm          = "term"
	AttrName          = "name"
	AttrWikidataID    = "wikidataID"
	AttrWikidataURL   = "wikidataURL"
	AttrWikipediaPage = "wikipediaPage"
	AttrDescription   = "description"
	AttrDefinition    = "definition"
)

// EntryAttributes lists the attributes allowed on an entry, in output order.
var EntryAttributes = []string{
	AttrTerm, AttrName, AttrWikidataID, AttrWikidataURL,
	AttrWikipediaPage, AttrDescription, AttrDefinition,
}

// Content block classes and titles produced by enrichment.
const (
	LeadParagraphClass = "wpage_first_para"
	FigureTitle        = "figure"
	DefinitionsClass   = "wiktionary_definitions"
)

// NotFound marks an entry whose disambiguation found no acceptable Q-ID.
// It is stored in Raw, never in WikidataID.
const NotFound = "NOT_FOUND"

// WikidataEntityBase prefixes a Q-ID to form the entity URL.
const WikidataEntityBase = "https://www.wikidata.org/entity/"

var wikidataIDPattern = regexp.MustCompile(`^[PQ]\d+$`)

// IsValidWikidataID reports whether id looks like Q123 or P31.
func IsValidWikidataID(id string) bool {
	return wikidataIDPattern.MatchString(id)
}

// Attr is an attribute outside the allowed set, kept so that Validate can
// report it and the writers can reproduce it.
type Attr struct {
	Name  string
	Value string
}

// Synonym is an alternative surface form in a language.
type Synonym struct {
	Lang  string
	Value string
}

// Sitelink is a Wikipedia article URL for a language.
type Sitelink struct {
	Lang string
	URL  string
}

// Raw holds unresolved Q-ID candidates, e.g. from a disambiguation page,
// for a later curation pass.
type Raw struct {
	WikidataIDs []string
}

// String renders the candidate list as ['Q1', 'Q2'].
func (r *Raw) String() string {
	if r == nil {
		return ""
	}
	quoted := make([]string, len(r.WikidataIDs))
	for i, id := range r.WikidataIDs {
		quoted[i] = "'" + id + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ParseRaw reads the list literal written by Raw.String. A bare value
// without brackets is read as a one-element list.
func ParseRaw(s string) *Raw {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return &Raw{WikidataIDs: ids}
}

// Entry is one term of a dictionary. Term is the index key and must not be
// changed after the entry has been added; use ReplaceEntry instead.
type Entry struct {
	Term          string
	Name          string
	WikidataID    string
	WikidataURL   string
	WikipediaPage string
	Description   string
	Definition    string
	Extra         []Attr

	Synonyms     []Synonym
	Wikipedia    []Sitelink
	WikidataHits []string
	Raw          *Raw

	// Content holds free-form blocks such as the Wikipedia lead paragraph
	// and figure. Nodes are detached element trees owned by the entry.
	Content []*html.Node
}

func newEntry(term string) (*Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, &DictionaryError{Node: "entry", Rule: RuleTerm, Detail: "term is empty"}
	}
	return &Entry{Term: term}, nil
}

// Label returns the name, falling back to the term.
func (e *Entry) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Term
}

// SetWikidataID sets the Q-ID and the matching entity URL. An empty id
// clears both. Malformed ids are rejected and leave the entry unchanged.
func (e *Entry) SetWikidataID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		e.WikidataID, e.WikidataURL = "", ""
		return nil
	}
	if !IsValidWikidataID(id) {
		return &DictionaryError{Node: entryNode(e.Term), Rule: RuleWikidataID, Detail: id}
	}
	e.WikidataID = id
	e.WikidataURL = WikidataEntityBase + id
	return nil
}

// AddSynonym appends a synonym unless an identical one is present.
func (e *Entry) AddSynonym(lang, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	s := Synonym{Lang: lang, Value: value}
	if slices.Contains(e.Synonyms, s) {
		return false
	}
	e.Synonyms = append(e.Synonyms, s)
	return true
}

// AddSitelink records a Wikipedia URL, replacing any earlier one for lang.
func (e *Entry) AddSitelink(lang, url string) {
	for i := range e.Wikipedia {
		if e.Wikipedia[i].Lang == lang {
			e.Wikipedia[i].URL = url
			return
		}
	}
	e.Wikipedia = append(e.Wikipedia, Sitelink{Lang: lang, URL: url})
}

// AddWikidataHit appends a secondary candidate Q-ID unless present.
func (e *Entry) AddWikidataHit(qid string) bool {
	if qid == "" || qid == e.WikidataID || slices.Contains(e.WikidataHits, qid) {
		return false
	}
	e.WikidataHits = append(e.WikidataHits, qid)
	return true
}

// SetRaw replaces the unresolved candidate list. An empty list clears it.
func (e *Entry) SetRaw(ids []string) {
	if len(ids) == 0 {
		e.Raw = nil
		return
	}
	e.Raw = &Raw{WikidataIDs: slices.Clone(ids)}
}

// MarkNotFound records that no acceptable Q-ID exists for the entry.
func (e *Entry) MarkNotFound() {
	e.SetRaw([]string{NotFound})
}

// IsNotFound reports whether MarkNotFound was applied.
func (e *Entry) IsNotFound() bool {
	return e.Raw != nil && len(e.Raw.WikidataIDs) == 1 && e.Raw.WikidataIDs[0] == NotFound
}

// AddContent appends a detached block. A lead paragraph, figure or
// definitions block replaces an existing block of the same kind so
// repeated enrichment does not pile up copies.
func (e *Entry) AddContent(n *html.Node) {
	if n == nil {
		return
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	if key := blockKey(n); key != "" {
		for i, old := range e.Content {
			if blockKey(old) == key {
				e.Content[i] = n
				return
			}
		}
	}
	e.Content = append(e.Content, n)
}

// LeadParagraph returns the Wikipedia first-paragraph block, or nil.
func (e *Entry) LeadParagraph() *html.Node {
	for _, n := range e.Content {
		if hasClass(n, LeadParagraphClass) {
			return n
		}
	}
	return nil
}

// Figure returns the figure block, or nil.
func (e *Entry) Figure() *html.Node {
	for _, n := range e.Content {
		if n.Type == html.ElementNode && dom.GetAttribute(n, "title") == FigureTitle {
			return n
		}
	}
	return nil
}

// ContentByTag returns the blocks whose element name is tag.
func (e *Entry) ContentByTag(tag string) []*html.Node {
	var out []*html.Node
	for _, n := range e.Content {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Extra = slices.Clone(e.Extra)
	c.Synonyms = slices.Clone(e.Synonyms)
	c.Wikipedia = slices.Clone(e.Wikipedia)
	c.WikidataHits = slices.Clone(e.WikidataHits)
	if e.Raw != nil {
		c.Raw = &Raw{WikidataIDs: slices.Clone(e.Raw.WikidataIDs)}
	}
	c.Content = make([]*html.Node, len(e.Content))
	for i, n := range e.Content {
		c.Content[i] = dom.Clone(n, true)
	}
	return &c
}

// attr returns the value of a known attribute by name.
func (e *Entry) attr(name string) string {
	switch name {
	case AttrTerm:
		return e.Term
	case AttrName:
		return e.Name
	case AttrWikidataID:
		return e.WikidataID
	case AttrWikidataURL:
		return e.WikidataURL
	case AttrWikipediaPage:
		return e.WikipediaPage
	case AttrDescription:
		return e.Description
	case AttrDefinition:
		return e.Definition
	}
	return ""
}

// setAttr assigns an attribute read by a loader. Names are matched case
// insensitively because the HTML parser lowercases them. Unknown names go
// to Extra.
func (e *Entry) setAttr(name, value string) {
	for _, known := range EntryAttributes {
		if strings.EqualFold(name, known) {
			name = known
			break
		}
	}
	switch name {
	case AttrTerm:
		e.Term = strings.TrimSpace(value)
	case AttrName:
		e.Name = value
	case AttrWikidataID:
		e.WikidataID = value
	case AttrWikidataURL:
		e.WikidataURL = value
	case AttrWikipediaPage:
		e.WikipediaPage = value
	case AttrDescription:
		e.Description = value
	case AttrDefinition:
		e.Definition = value
	default:
		e.Extra = append(e.Extra, Attr{Name: name, Value: value})
	}
}

func blockKey(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	if hasClass(n, LeadParagraphClass) {
		return "class:" + LeadParagraphClass
	}
	if dom.GetAttribute(n, "title") == FigureTitle {
		return "title:" + FigureTitle
	}
	if hasClass(n, DefinitionsClass) {
		return "class:" + DefinitionsClass
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return slices.Contains(strings.Fields(dom.ClassName(n)), class)
}
