// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// text returns the whitespace-normalized text content of n.
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(dom.TextContent(n)), " ")
}

func first(n *html.Node, sel cascadia.Matcher) *html.Node {
	if n == nil {
		return nil
	}
	return cascadia.Query(n, sel)
}

func all(n *html.Node, sel cascadia.Matcher) []*html.Node {
	if n == nil {
		return nil
	}
	return cascadia.QueryAll(n, sel)
}

// detach removes every node matched by sel from n.
func detach(n *html.Node, sel cascadia.Matcher) {
	for _, m := range all(n, sel) {
		if m.Parent != nil {
			m.Parent.RemoveChild(m)
		}
	}
}

func addClass(n *html.Node, class string) {
	classes := strings.Fields(dom.ClassName(n))
	for _, c := range classes {
		if c == class {
			return
		}
	}
	dom.SetAttribute(n, "class", strings.TrimSpace(strings.Join(append(classes, class), " ")))
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
