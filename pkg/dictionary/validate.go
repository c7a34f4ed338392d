// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import "fmt"

// Validate checks the schema rules and returns a *ValidationError listing
// every violation, or nil. Loaders are lenient, so a loaded dictionary may
// hold values that Validate rejects.
func (d *Dictionary) Validate() error {
	var vs []Violation
	add := func(node, rule, detail string) {
		vs = append(vs, Violation{Node: node, Rule: rule, Detail: detail})
	}

	if d.Title == "" {
		add("dictionary", RuleTitle, "")
	}
	for _, a := range d.Extra {
		add("dictionary", RuleRootAttribute, a.Name)
	}
	for _, name := range d.strayChildren {
		add("dictionary", RuleRootChild, name)
	}
	if d.Version != "" && !IsValidVersion(d.Version) {
		add("dictionary", RuleVersion, d.Version)
	}

	seen := make(map[string]string)
	for i, e := range d.entries {
		node := entryNode(e.Term)
		if e.Term == "" {
			node = fmt.Sprintf("entry[%d]", i)
			add(node, RuleTerm, "")
		}
		for _, a := range e.Extra {
			add(node, RuleEntryAttribute, a.Name)
		}
		if e.WikidataID != "" && !IsValidWikidataID(e.WikidataID) {
			add(node, RuleWikidataID, e.WikidataID)
		}
		k := d.key(e.Term)
		if first, ok := seen[k]; ok {
			add(node, RuleDuplicateTerm, fmt.Sprintf("already present as %q", first))
			continue
		}
		seen[k] = e.Term
	}

	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}
