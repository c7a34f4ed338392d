// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Labels of the Wikipedia "Page information" table.
const (
	LabelDisplayTitle       = "Display title"
	LabelSortKey            = "Default sort key"
	LabelPageLength         = "Page length (in bytes)"
	LabelNamespaceID        = "Namespace ID"
	LabelPageID             = "Page ID"
	LabelContentLanguage    = "Page content language"
	LabelContentModel       = "Page content model"
	LabelRobots             = "Indexing by robots"
	LabelWatchers           = "Number of page watchers"
	LabelRecentWatchers     = "Number of page watchers who visited in the last 30 days"
	LabelRedirects          = "Number of redirects to this page"
	LabelContentPage        = "Counted as a content page"
	LabelWikidataItemID     = "Wikidata item ID"
	LabelLocalDescription   = "Local description"
	LabelCentralDescription = "Central description"
	LabelPageImage          = "Page image"
	LabelPageViews          = "Page views in the past 30 days"
)

var (
	pageInfoTableSel = cascadia.MustCompile("table.mw-page-info")
	basicHeadingSel  = cascadia.MustCompile("#Basic_information")
	tableSel         = cascadia.MustCompile("table")
	rowSel           = cascadia.MustCompile("tr")
	cellSel          = cascadia.MustCompile("td")
)

// BasicInfo is the label/value table from a page's information view.
// Values are the cell text, or the link target when the cell is a link.
type BasicInfo struct {
	// Labels lists the labels in table order.
	Labels []string
	values map[string]string
}

// ParseBasicInfo reads the "Basic information" table of an info page.
// It returns nil when the table is missing.
func ParseBasicInfo(doc *html.Node) *BasicInfo {
	table := first(doc, pageInfoTableSel)
	if table == nil {
		table = tableAfter(first(doc, basicHeadingSel))
	}
	if table == nil {
		return nil
	}

	b := &BasicInfo{values: make(map[string]string)}
	for _, tr := range all(table, rowSel) {
		cells := all(tr, cellSel)
		if len(cells) < 2 {
			continue
		}
		label := text(cells[0])
		if label == "" {
			continue
		}
		if _, dup := b.values[label]; !dup {
			b.Labels = append(b.Labels, label)
		}
		b.values[label] = cellValue(cells[1])
	}
	return b
}

// tableAfter finds the first table following the heading, allowing for
// the heading being wrapped in a div.mw-heading.
func tableAfter(h *html.Node) *html.Node {
	for n, depth := h, 0; n != nil && depth < 3; n, depth = n.Parent, depth+1 {
		for s := n.NextSibling; s != nil; s = s.NextSibling {
			if s.Type != html.ElementNode {
				continue
			}
			if s.Data == "table" {
				return s
			}
			if t := first(s, tableSel); t != nil {
				return t
			}
		}
	}
	return nil
}

func cellValue(td *html.Node) string {
	for _, c := range elementChildren(td) {
		if c.Data == "a" {
			if href := dom.GetAttribute(c, "href"); href != "" {
				return href
			}
		}
	}
	return text(td)
}

// Get returns the value for label, or "".
func (b *BasicInfo) Get(label string) string {
	if b == nil {
		return ""
	}
	return b.values[label]
}

func (b *BasicInfo) DisplayTitle() string       { return b.Get(LabelDisplayTitle) }
func (b *BasicInfo) LocalDescription() string   { return b.Get(LabelLocalDescription) }
func (b *BasicInfo) CentralDescription() string { return b.Get(LabelCentralDescription) }
func (b *BasicInfo) ContentLanguage() string    { return b.Get(LabelContentLanguage) }

// PageImage returns the link to the page image's file page.
func (b *BasicInfo) PageImage() string { return b.Get(LabelPageImage) }

// PageID returns the numeric page id, or 0.
func (b *BasicInfo) PageID() int { return b.number(LabelPageID) }

// Watchers returns the number of page watchers, or 0 when hidden.
func (b *BasicInfo) Watchers() int { return b.number(LabelWatchers) }

// WikidataItemID returns the Q-ID from the Wikidata item link.
func (b *BasicInfo) WikidataItemID() string {
	v := b.Get(LabelWikidataItemID)
	if v == "" {
		return ""
	}
	if id := lastSegment(v); entityIDPattern.MatchString(id) {
		return strings.ToUpper(id)
	}
	return ""
}

func (b *BasicInfo) number(label string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(b.Get(label), ",", ""))
	if err != nil {
		return 0
	}
	return n
}
