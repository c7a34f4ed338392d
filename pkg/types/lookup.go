// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared records for the amidict pipeline: configuration
// and the results passed between lookup, enrichment, and the CLI.
package types

// Candidate is one Wikidata search hit.
type Candidate struct {
	// QID is the Wikidata identifier (e.g. "Q49546").
	QID string `json:"qid" yaml:"qid"`

	// Title is the item label shown in the search results.
	Title string `json:"title" yaml:"title"`

	// Description is the short Wikidata description (e.g. "chemical compound").
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Statements is the statement count reported by the search page.
	Statements int `json:"statements" yaml:"statements"`

	// Order is the position of the hit in the search results page.
	Order int `json:"order" yaml:"order"`
}

// LookupResult is the outcome of a term lookup. The zero value means
// nothing was found.
type LookupResult struct {
	// Term is the searched string.
	Term string `json:"term" yaml:"term"`

	// PrimaryQID is the best-ranked candidate, empty when nothing was found.
	PrimaryQID string `json:"primary_qid,omitempty" yaml:"primary_qid,omitempty"`

	// Description is the primary candidate's description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// CandidateQIDs lists the ranked candidates, primary first.
	CandidateQIDs []string `json:"candidate_qids" yaml:"candidate_qids"`

	// Candidates holds the ranked hits behind CandidateQIDs.
	Candidates []Candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// Found reports whether the lookup produced a primary candidate.
func (r LookupResult) Found() bool {
	return r.PrimaryQID != ""
}
