// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/amidict/pkg/types"
)

// FormatTable writes the ranked candidates of r as a fixed-width table.
func FormatTable(r types.LookupResult, w io.Writer) {
	if !r.Found() {
		fmt.Fprintf(w, "No Wikidata items found for %q.\n", r.Term)
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-30s  %-10s  %s\n",
		"Rank", "QID", "Title", "Statements", "Description")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, c := range r.Candidates {
		fmt.Fprintf(w, "%-4d  %-12s  %-30s  %-10d  %s\n",
			i+1, c.QID, truncate(c.Title, 30), c.Statements, truncate(c.Description, 40))
	}
	fmt.Fprintf(w, "\nprimary: %s (%s)\n", r.PrimaryQID, r.Description)
}

// FormatJSON writes r as indented JSON.
func FormatJSON(r types.LookupResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
