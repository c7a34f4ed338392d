// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encyclopedia

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Statistics summarizes the aggregation.
type Statistics struct {
	TotalEntries      int     `json:"total_entries" yaml:"total_entries"`
	NormalizedGroups  int     `json:"normalized_groups" yaml:"normalized_groups"`
	TotalSynonyms     int     `json:"total_synonyms" yaml:"total_synonyms"`
	CompressionRatio  float64 `json:"compression_ratio" yaml:"compression_ratio"`
	NoWikidataID      int     `json:"no_wikidata_id" yaml:"no_wikidata_id"`
	InvalidWikidataID int     `json:"invalid_wikidata_id" yaml:"invalid_wikidata_id"`
	Conflicts         int     `json:"wikipedia_url_conflicts" yaml:"wikipedia_url_conflicts"`
}

// Statistics counts the source entries, the concepts and their synonyms.
// CompressionRatio is entries per concept, 0 without concepts.
func (enc *Encyclopedia) Statistics() Statistics {
	concepts := enc.Concepts()
	keys := enc.BucketKeys()
	s := Statistics{
		TotalEntries:     enc.source,
		NormalizedGroups: len(concepts),
		Conflicts:        len(enc.Conflicts()),
	}
	for _, c := range concepts {
		s.TotalSynonyms += len(c.Synonyms)
	}
	for _, k := range keys {
		switch k {
		case NoWikidataID:
			s.NoWikidataID = len(enc.buckets[k])
		case InvalidWikidataID:
			s.InvalidWikidataID = len(enc.buckets[k])
		}
	}
	if s.NormalizedGroups > 0 {
		s.CompressionRatio = float64(s.TotalEntries) / float64(s.NormalizedGroups)
	}
	return s
}

// WriteYAML writes the statistics as YAML.
func (s Statistics) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON writes the statistics as indented JSON.
func (s Statistics) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// FormatText writes the statistics as aligned lines.
func (s Statistics) FormatText(w io.Writer) {
	fmt.Fprintf(w, "Entries:            %d\n", s.TotalEntries)
	fmt.Fprintf(w, "Concepts:           %d\n", s.NormalizedGroups)
	fmt.Fprintf(w, "Synonyms:           %d\n", s.TotalSynonyms)
	fmt.Fprintf(w, "Compression ratio:  %.2f\n", s.CompressionRatio)
	fmt.Fprintf(w, "Without Wikidata:   %d\n", s.NoWikidataID)
	fmt.Fprintf(w, "Invalid Wikidata:   %d\n", s.InvalidWikidataID)
	fmt.Fprintf(w, "URL conflicts:      %d\n", s.Conflicts)
}
