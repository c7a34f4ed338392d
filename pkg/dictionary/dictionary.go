// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dictionary holds the in-memory dictionary model: an ordered list
// of entries keyed by normalized term, with lossless XML and semantic-HTML
// serializations. It has no network or logging dependencies; lookups and
// enrichment live in internal/enrich.
package dictionary

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Root attribute names.
const (
	AttrTitle   = "title"
	AttrVersion = "version"
)

// DictionaryAttributes lists the attributes allowed on the root.
var DictionaryAttributes = []string{AttrTitle, AttrVersion, AttrDescription}

// InitialVersion is assigned to dictionaries saved without a version.
const InitialVersion = "0.0.1"

// DuplicatePolicy decides what AddEntry does with a term already present.
type DuplicatePolicy int

const (
	// Ignore keeps the existing entry and returns it.
	Ignore DuplicatePolicy = iota
	// Replace removes the existing entry and appends a fresh one.
	Replace
	// Error fails with a DictionaryError.
	Error
)

func (p DuplicatePolicy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Error:
		return "error"
	default:
		return "ignore"
	}
}

// ParseDuplicatePolicy reads ignore, replace or error.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return Ignore, nil
	case "replace":
		return Replace, nil
	case "error":
		return Error, nil
	}
	return Ignore, fmt.Errorf("unknown duplicate policy %q", s)
}

// KeyFunc normalizes a term into its index key.
type KeyFunc func(term string) string

// LowerKey is the default key: trimmed and lowercased.
func LowerKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Options configures construction.
type Options struct {
	Duplicates DuplicatePolicy
	Key        KeyFunc
}

// Dictionary is an ordered set of entries unique under the key function.
// It is not safe for concurrent use.
type Dictionary struct {
	Title       string
	Version     string
	Description string
	// Desc is the free-text <desc> child.
	Desc  string
	Extra []Attr

	entries []*Entry
	byKey   map[string]*Entry
	key     KeyFunc
	policy  DuplicatePolicy

	// strayChildren records unexpected root children seen by a loader.
	strayChildren []string
}

// New returns an empty dictionary. The title is required.
func New(title string, opts Options) (*Dictionary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &DictionaryError{Node: "dictionary", Rule: RuleTitle}
	}
	return newDictionary(title, opts), nil
}

func newDictionary(title string, opts Options) *Dictionary {
	key := opts.Key
	if key == nil {
		key = LowerKey
	}
	return &Dictionary{
		Title:  title,
		byKey:  make(map[string]*Entry),
		key:    key,
		policy: opts.Duplicates,
	}
}

// Minimal returns an empty dictionary titled "minimal" at the initial version.
func Minimal() *Dictionary {
	d := newDictionary("minimal", Options{})
	d.Version = InitialVersion
	return d
}

// FromTerms builds a dictionary with one entry per term. Blank terms are
// skipped; repeated terms follow the duplicate policy.
func FromTerms(terms []string, title string, opts Options) (*Dictionary, error) {
	d, err := New(title, opts)
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if _, err := d.AddEntry(t); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FromWordFile reads one term per line. Blank lines and lines starting
// with # are skipped. An empty title is derived from the file name,
// lowercased with spaces removed. maxEntries <= 0 means no limit.
func FromWordFile(path, title string, maxEntries int, opts Options) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word file: %w", err)
	}
	defer f.Close()

	if strings.TrimSpace(title) == "" {
		title = TitleFromPath(path)
	}

	var terms []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
		if maxEntries > 0 && len(terms) >= maxEntries {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading word file: %w", err)
	}
	return FromTerms(terms, title, opts)
}

// FromCSV builds a dictionary from one column of a CSV file, such as the
// keyword tables written by docanalysis. The column is chosen by header
// name and the title is required.
func FromCSV(r io.Reader, column, title string, opts Options) (*Dictionary, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &DictionaryError{Node: "dictionary", Rule: RuleTitle}
	}
	terms, err := ReadCSVColumn(r, column)
	if err != nil {
		return nil, err
	}
	return FromTerms(terms, title, opts)
}

// ReadCSVColumn returns the non-blank cells of the named column, trimmed,
// in row order. The first record is the header. Rows too short to reach
// the column are skipped.
func ReadCSVColumn(r io.Reader, column string) ([]string, error) {
	column = strings.TrimSpace(column)
	if column == "" {
		return nil, fmt.Errorf("%w: no column name given", ErrColumn)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %q in empty CSV", ErrColumn, column)
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	idx := -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q not in header %v", ErrColumn, column, header)
	}

	var terms []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return terms, nil
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		if idx >= len(rec) {
			continue
		}
		if t := strings.TrimSpace(rec[idx]); t != "" {
			terms = append(terms, t)
		}
	}
}

// TitleFromPath derives a dictionary title from a file name.
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.Join(strings.Fields(base), ""))
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.entries) }

// Entries returns the entries in insertion order. The slice is a copy; the
// entries are shared.
func (d *Dictionary) Entries() []*Entry {
	return slices.Clone(d.entries)
}

// Entry returns the entry whose key matches term, or nil.
func (d *Dictionary) Entry(term string) *Entry {
	return d.byKey[d.key(term)]
}

// EntryIgnoreCase returns the entry whose term equals term ignoring case,
// whatever key function the dictionary uses.
func (d *Dictionary) EntryIgnoreCase(term string) *Entry {
	if e := d.Entry(term); e != nil && strings.EqualFold(e.Term, strings.TrimSpace(term)) {
		return e
	}
	term = strings.TrimSpace(term)
	for _, e := range d.entries {
		if strings.EqualFold(e.Term, term) {
			return e
		}
	}
	return nil
}

// GetEntry looks term up through the index, or case-insensitively.
func (d *Dictionary) GetEntry(term string, ignoreCase bool) *Entry {
	if ignoreCase {
		return d.EntryIgnoreCase(term)
	}
	return d.Entry(term)
}

// AddEntry adds a new entry for term and returns it. When the key is taken
// the duplicate policy applies: Ignore returns the existing entry, Replace
// drops it and appends a fresh one, Error fails.
func (d *Dictionary) AddEntry(term string) (*Entry, error) {
	e, err := newEntry(term)
	if err != nil {
		return nil, err
	}
	return d.add(e)
}

// Add inserts a prepared entry under the duplicate policy.
func (d *Dictionary) Add(e *Entry) (*Entry, error) {
	if e == nil || strings.TrimSpace(e.Term) == "" {
		return nil, &DictionaryError{Node: "entry", Rule: RuleTerm, Detail: "term is empty"}
	}
	e.Term = strings.TrimSpace(e.Term)
	return d.add(e)
}

func (d *Dictionary) add(e *Entry) (*Entry, error) {
	k := d.key(e.Term)
	if old, ok := d.byKey[k]; ok {
		switch d.policy {
		case Ignore:
			return old, nil
		case Error:
			return nil, &DictionaryError{Node: entryNode(e.Term), Rule: RuleDuplicateTerm,
				Detail: fmt.Sprintf("already present as %q", old.Term)}
		case Replace:
			d.remove(k)
		}
	}
	d.entries = append(d.entries, e)
	d.byKey[k] = e
	return e, nil
}

// RemoveEntry deletes the entry for term. It reports whether one existed.
func (d *Dictionary) RemoveEntry(term string) bool {
	return d.remove(d.key(term))
}

func (d *Dictionary) remove(k string) bool {
	e, ok := d.byKey[k]
	if !ok {
		return false
	}
	delete(d.byKey, k)
	d.entries = slices.DeleteFunc(d.entries, func(x *Entry) bool { return x == e })
	return true
}

// ReplaceEntry removes any entry for term and appends a fresh one,
// regardless of the duplicate policy.
func (d *Dictionary) ReplaceEntry(term string) (*Entry, error) {
	e, err := newEntry(term)
	if err != nil {
		return nil, err
	}
	d.remove(d.key(e.Term))
	d.entries = append(d.entries, e)
	d.byKey[d.key(e.Term)] = e
	return e, nil
}

// EntryByWikidataID maps each Q-ID to the first entry carrying it.
// Entries without an ID are omitted. See DuplicateWikidataIDs.
func (d *Dictionary) EntryByWikidataID() map[string]*Entry {
	m := make(map[string]*Entry)
	for _, e := range d.entries {
		if e.WikidataID == "" {
			continue
		}
		if _, ok := m[e.WikidataID]; !ok {
			m[e.WikidataID] = e
		}
	}
	return m
}

// DuplicateWikidataIDs maps each Q-ID carried by more than one entry to
// the terms carrying it, in insertion order.
func (d *Dictionary) DuplicateWikidataIDs() map[string][]string {
	terms := make(map[string][]string)
	for _, e := range d.entries {
		if e.WikidataID != "" {
			terms[e.WikidataID] = append(terms[e.WikidataID], e.Term)
		}
	}
	for id, ts := range terms {
		if len(ts) < 2 {
			delete(terms, id)
		}
	}
	return terms
}

// EntriesWithoutWikidataID returns entries lacking a Q-ID.
func (d *Dictionary) EntriesWithoutWikidataID() []*Entry {
	var out []*Entry
	for _, e := range d.entries {
		if e.WikidataID == "" {
			out = append(out, e)
		}
	}
	return out
}

// TermSet returns the lowercased terms in insertion order without repeats.
// With split, each word of a multi-word term is added as well.
func (d *Dictionary) TermSet(split bool) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, e := range d.entries {
		t := strings.ToLower(e.Term)
		add(t)
		if split {
			for _, w := range strings.Fields(t) {
				add(w)
			}
		}
	}
	return out
}

// IsValidVersion reports whether v has three dot-separated non-negative
// integer parts.
func IsValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || p == "" || strings.HasPrefix(p, "+") {
			return false
		}
	}
	return true
}

// SetVersion sets an explicit version after checking its format.
func (d *Dictionary) SetVersion(v string) error {
	if !IsValidVersion(v) {
		return &DictionaryError{Node: "dictionary", Rule: RuleVersion, Detail: v}
	}
	d.Version = v
	return nil
}

// EnsureVersion assigns InitialVersion when the version is missing or
// malformed.
func (d *Dictionary) EnsureVersion() {
	if !IsValidVersion(d.Version) {
		d.Version = InitialVersion
	}
}

// BumpVersion increments the patch part, or sets InitialVersion.
func (d *Dictionary) BumpVersion() {
	if !IsValidVersion(d.Version) {
		d.Version = InitialVersion
		return
	}
	parts := strings.Split(d.Version, ".")
	patch, _ := strconv.Atoi(parts[2])
	parts[2] = strconv.Itoa(patch + 1)
	d.Version = strings.Join(parts, ".")
}

// rootAttr returns the value of a known root attribute.
func (d *Dictionary) rootAttr(name string) string {
	switch name {
	case AttrTitle:
		return d.Title
	case AttrVersion:
		return d.Version
	case AttrDescription:
		return d.Description
	}
	return ""
}

func (d *Dictionary) setRootAttr(name, value string) {
	switch {
	case strings.EqualFold(name, AttrTitle):
		d.Title = strings.TrimSpace(value)
	case strings.EqualFold(name, AttrVersion):
		d.Version = value
	case strings.EqualFold(name, AttrDescription):
		d.Description = value
	default:
		d.Extra = append(d.Extra, Attr{Name: name, Value: value})
	}
}
