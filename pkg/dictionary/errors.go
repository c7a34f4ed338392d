// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Concrete errors unwrap to one of these.
var (
	// ErrDictionary marks an invariant violation on model mutation.
	ErrDictionary = errors.New("dictionary error")

	// ErrParse marks malformed XML, HTML or CSV input.
	ErrParse = errors.New("parse error")

	// ErrColumn marks a CSV whose header lacks the requested column.
	ErrColumn = errors.New("column not found")

	// ErrValidation marks a loaded artifact that fails schema checks.
	ErrValidation = errors.New("validation error")
)

// Rule names reported in DictionaryError and Violation.
const (
	RuleRootTag        = "root-tag"
	RuleRootAttribute  = "root-attribute"
	RuleRootChild      = "root-child"
	RuleTitle          = "title-required"
	RuleVersion        = "version-format"
	RuleTerm           = "term-required"
	RuleEntryAttribute = "entry-attribute"
	RuleWikidataID     = "wikidata-id-format"
	RuleDuplicateTerm  = "duplicate-term"
)

// DictionaryError reports a rule broken by a mutation. Node names the
// offending element, e.g. `entry[term="methane"]`.
type DictionaryError struct {
	Node   string
	Rule   string
	Detail string
}

func (e *DictionaryError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Node, e.Rule)
	}
	return fmt.Sprintf("%s: %s: %s", e.Node, e.Rule, e.Detail)
}

func (e *DictionaryError) Unwrap() error { return ErrDictionary }

// ParseError wraps a syntax failure from the XML, HTML or CSV reader.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parsing dictionary: %v", e.Err)
	}
	return fmt.Sprintf("parsing dictionary %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// Violation is one failed schema check.
type Violation struct {
	Node   string
	Rule   string
	Detail string
}

func (v Violation) String() string {
	if v.Detail == "" {
		return fmt.Sprintf("%s: %s", v.Node, v.Rule)
	}
	return fmt.Sprintf("%s: %s: %s", v.Node, v.Rule, v.Detail)
}

// ValidationError collects every violation found in one pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid dictionary (%d problems): %s", len(parts), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// HasRule reports whether any violation matches rule.
func (e *ValidationError) HasRule(rule string) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func entryNode(term string) string {
	return fmt.Sprintf("entry[term=%q]", term)
}
