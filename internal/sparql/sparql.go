// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sparql runs SPARQL queries against a results-XML endpoint and
// copies result values into dictionary entries.
package sparql

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/amidict/internal/httputil"
)

// DefaultEndpoint is the Wikidata Query Service.
const DefaultEndpoint = "https://query.wikidata.org/sparql"

// ResultsMediaType is requested from the endpoint.
const ResultsMediaType = "application/sparql-results+xml"

// ErrNoResults is returned by ParseResults for a document without a
// <results> element.
var ErrNoResults = errors.New("no SPARQL results")

// Poster submits a form. httputil.Fetcher implements it.
type Poster interface {
	PostForm(ctx context.Context, rawURL string, form url.Values, accept string) (*httputil.Response, error)
}

// RunQuery posts query to endpoint and returns the results XML.
func RunQuery(ctx context.Context, p Poster, endpoint, query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty SPARQL query")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	resp, err := p.PostForm(ctx, endpoint, url.Values{"query": {query}}, ResultsMediaType)
	if err != nil {
		return nil, fmt.Errorf("SPARQL query: %w", err)
	}
	return resp.Body, nil
}

// Binding is one variable value of a result row.
type Binding struct {
	// Type is "uri", "literal" or "bnode".
	Type     string
	Value    string
	Lang     string
	Datatype string
}

// Results is a parsed SELECT result. Rows hold only the bound variables.
type Results struct {
	Vars []string
	Rows []map[string]Binding
}

// SPARQL results XML structures.
type resultsDoc struct {
	Head struct {
		Variables []struct {
			Name string `xml:"name,attr"`
		} `xml:"variable"`
	} `xml:"head"`
	Results *struct {
		Result []struct {
			Bindings []bindingXML `xml:"binding"`
		} `xml:"result"`
	} `xml:"results"`
}

type bindingXML struct {
	Name    string `xml:"name,attr"`
	URI     *string `xml:"uri"`
	BNode   *string `xml:"bnode"`
	Literal *struct {
		Value    string `xml:",chardata"`
		Lang     string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
		Datatype string `xml:"datatype,attr"`
	} `xml:"literal"`
}

// ParseResults decodes a SPARQL results XML document.
func ParseResults(data []byte) (*Results, error) {
	var doc resultsDoc
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing SPARQL results: %w", err)
	}
	if doc.Results == nil {
		return nil, ErrNoResults
	}

	res := &Results{}
	for _, v := range doc.Head.Variables {
		res.Vars = append(res.Vars, v.Name)
	}
	for _, r := range doc.Results.Result {
		row := make(map[string]Binding, len(r.Bindings))
		for _, b := range r.Bindings {
			switch {
			case b.URI != nil:
				row[b.Name] = Binding{Type: "uri", Value: strings.TrimSpace(*b.URI)}
			case b.Literal != nil:
				row[b.Name] = Binding{Type: "literal", Value: b.Literal.Value, Lang: b.Literal.Lang, Datatype: b.Literal.Datatype}
			case b.BNode != nil:
				row[b.Name] = Binding{Type: "bnode", Value: strings.TrimSpace(*b.BNode)}
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// TrailingSegment returns the last path segment of a URI, e.g. Q42 for
// http://www.wikidata.org/entity/Q42.
func TrailingSegment(uri string) string {
	uri = strings.TrimRight(strings.TrimSpace(uri), "/")
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
