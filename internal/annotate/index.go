// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/pdiddy/amidict/internal/fileutil"
)

// IndexClass marks the outer list of the hit index page.
const IndexClass = "annotation_index"

// IndexDocument builds the hit index page: one item per term holding a
// list of document#paragraph links with the text around each match.
func IndexDocument(results ...*Result) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := dom.CreateElement("html")
	doc.AppendChild(root)

	head := dom.CreateElement("head")
	meta := dom.CreateElement("meta")
	dom.SetAttribute(meta, "charset", "UTF-8")
	head.AppendChild(meta)
	head.AppendChild(textElement("title", "Annotation index"))
	root.AppendChild(head)

	body := dom.CreateElement("body")
	root.AppendChild(body)
	ul := dom.CreateElement("ul")
	dom.SetAttribute(ul, "class", IndexClass)
	body.AppendChild(ul)

	var terms []string
	byTerm := make(map[string][]Match)
	for _, r := range results {
		for _, m := range r.Matches {
			if _, ok := byTerm[m.Term]; !ok {
				terms = append(terms, m.Term)
			}
			byTerm[m.Term] = append(byTerm[m.Term], m)
		}
	}

	for _, t := range terms {
		li := textElement("li", t)
		inner := dom.CreateElement("ul")
		for _, m := range byTerm[t] {
			item := dom.CreateElement("li")
			if m.Before != "" {
				item.AppendChild(textElement("span", m.Before))
			}
			a := textElement("a", m.Text)
			dom.SetAttribute(a, "href", m.Anchor())
			item.AppendChild(a)
			if m.After != "" {
				item.AppendChild(textElement("span", m.After))
			}
			inner.AppendChild(item)
		}
		li.AppendChild(inner)
		ul.AppendChild(li)
	}
	return doc
}

// WriteIndex renders the hit index page for the results.
func WriteIndex(w io.Writer, results ...*Result) error {
	if err := html.Render(w, IndexDocument(results...)); err != nil {
		return fmt.Errorf("writing annotation index: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteCounts writes one "term<TAB>count" line per term, most frequent
// first.
func WriteCounts(w io.Writer, counts map[string]int) error {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	for _, t := range terms {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", t, counts[t]); err != nil {
			return err
		}
	}
	return nil
}

// AnnotateFile annotates the HTML file at in and writes the result to out.
// Matches are indexed against the base name of out. When indexPath is set
// the hit index page is written there as well.
func (a *Annotator) AnnotateFile(in, out, indexPath string) (*Result, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", in, err)
	}
	doc, err := html.Parse(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", in, err)
	}

	res := a.AnnotateDocument(doc, filepath.Base(out))
	err = fileutil.WriteAtomic(out, func(w io.Writer) error {
		return html.Render(w, doc)
	})
	if err != nil {
		return nil, err
	}
	a.Logger.Info("wrote annotated document", "path", out, "annotations", res.Annotations)

	if indexPath != "" {
		err := fileutil.WriteAtomic(indexPath, func(w io.Writer) error {
			return WriteIndex(w, res)
		})
		if err != nil {
			return nil, err
		}
		a.Logger.Info("wrote annotation index", "path", indexPath, "terms", len(res.Terms()))
	}
	return res, nil
}

// DefaultIndexPath returns index.html beside out.
func DefaultIndexPath(out string) string {
	return filepath.Join(filepath.Dir(out), "index.html")
}

func textElement(tag, text string) *html.Node {
	n := dom.CreateElement(tag)
	if text != "" {
		n.AppendChild(dom.CreateTextNode(text))
	}
	return n
}
