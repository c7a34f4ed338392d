// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sparql

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-shiori/dom"

	"github.com/pdiddy/amidict/pkg/dictionary"
)

// Mapping names the result variable holding the entity URI, the variable
// holding the value and the element the value is stored under.
type Mapping struct {
	IDName     string `json:"id_name" yaml:"id_name" mapstructure:"id_name"`
	SparqlName string `json:"sparql_name" yaml:"sparql_name" mapstructure:"sparql_name"`
	DictName   string `json:"dict_name" yaml:"dict_name" mapstructure:"dict_name"`
}

var elementName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Validate checks that all names are set and DictName is a usable
// element name.
func (m Mapping) Validate() error {
	switch {
	case m.IDName == "":
		return fmt.Errorf("mapping: id name is required")
	case m.SparqlName == "":
		return fmt.Errorf("mapping: sparql name is required")
	case !elementName.MatchString(m.DictName):
		return fmt.Errorf("mapping: invalid element name %q", m.DictName)
	}
	return nil
}

// UpdateSummary counts what ApplyUpdate did with each row.
type UpdateSummary struct {
	Applied        int `json:"applied" yaml:"applied"`
	Unchanged      int `json:"unchanged" yaml:"unchanged"`
	SkippedNoID    int `json:"skipped_no_id" yaml:"skipped_no_id"`
	SkippedNoEntry int `json:"skipped_no_entry" yaml:"skipped_no_entry"`
	SkippedBlank   int `json:"skipped_blank" yaml:"skipped_blank"`
}

// Total returns the number of rows seen.
func (s UpdateSummary) Total() int {
	return s.Applied + s.Unchanged + s.SkippedNoID + s.SkippedNoEntry + s.SkippedBlank
}

// Print writes a one-line summary.
func (s UpdateSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "\nUpdate summary: %d applied, %d unchanged, %d without id, %d without entry, %d blank (total: %d)\n",
		s.Applied, s.Unchanged, s.SkippedNoID, s.SkippedNoEntry, s.SkippedBlank, s.Total())
}

// ApplyUpdate adds, for each row, an element named m.DictName holding the
// m.SparqlName value to the entry whose Q-ID is the trailing segment of
// the m.IDName binding. A value already present under that element is
// not added twice.
func ApplyUpdate(d *dictionary.Dictionary, res *Results, m Mapping, logger *slog.Logger) (UpdateSummary, error) {
	var s UpdateSummary
	if err := m.Validate(); err != nil {
		return s, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sparql")

	for qid, terms := range d.DuplicateWikidataIDs() {
		logger.Warn("wikidata id shared by several entries", "wikidata_id", qid, "terms", terms)
	}
	byID := d.EntryByWikidataID()

	for _, row := range res.Rows {
		id, ok := row[m.IDName]
		if !ok {
			s.SkippedNoID++
			continue
		}
		qid := TrailingSegment(id.Value)
		if !dictionary.IsValidWikidataID(qid) {
			logger.Debug("skipping row with malformed id", "value", id.Value)
			s.SkippedNoID++
			continue
		}
		e, ok := byID[qid]
		if !ok {
			logger.Info("no entry for wikidata id", "wikidata_id", qid)
			s.SkippedNoEntry++
			continue
		}
		value := strings.TrimSpace(row[m.SparqlName].Value)
		if value == "" {
			s.SkippedBlank++
			continue
		}
		if hasValue(e, m.DictName, value) {
			s.Unchanged++
			continue
		}
		n := dom.CreateElement(m.DictName)
		n.AppendChild(dom.CreateTextNode(value))
		e.AddContent(n)
		s.Applied++
	}
	logger.Info("applied SPARQL results", "rows", len(res.Rows), "applied", s.Applied)
	return s, nil
}

func hasValue(e *dictionary.Entry, tag, value string) bool {
	for _, n := range e.ContentByTag(tag) {
		if strings.TrimSpace(dom.TextContent(n)) == value {
			return true
		}
	}
	return false
}
