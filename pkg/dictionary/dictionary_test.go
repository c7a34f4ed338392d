// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresTitle(t *testing.T) {
	_, err := New("  ", Options{})
	assert.ErrorIs(t, err, ErrDictionary)

	var de *DictionaryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, RuleTitle, de.Rule)
}

func TestGetEntryIgnoresCase(t *testing.T) {
	d := Minimal()
	e, err := d.AddEntry("Methane")
	require.NoError(t, err)

	assert.Same(t, e, d.GetEntry("methane", true))
	assert.Same(t, d.GetEntry("methane", true), d.GetEntry("METHANE", true))
	assert.Same(t, e, d.Entry("mEtHaNe"))
}

func TestGetEntryWithCaseSensitiveKey(t *testing.T) {
	d, err := New("exact", Options{Key: func(s string) string { return s }})
	require.NoError(t, err)

	upper, err := d.AddEntry("NO")
	require.NoError(t, err)
	lower, err := d.AddEntry("no")
	require.NoError(t, err)

	assert.NotSame(t, upper, lower)
	assert.Same(t, lower, d.GetEntry("no", false))
	assert.Nil(t, d.GetEntry("No", false))
	assert.NotNil(t, d.GetEntry("No", true))
}

func TestAddEntryDuplicatePolicies(t *testing.T) {
	tests := []struct {
		name      string
		policy    DuplicatePolicy
		wantErr   bool
		wantTerms []string
		wantFresh bool
	}{
		{name: "ignore keeps the first", policy: Ignore, wantTerms: []string{"carbon", "energy"}},
		{name: "replace appends a fresh entry", policy: Replace, wantTerms: []string{"energy", "Carbon"}, wantFresh: true},
		{name: "error rejects", policy: Error, wantErr: true, wantTerms: []string{"carbon", "energy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromTerms([]string{"carbon", "energy"}, "t", Options{Duplicates: tt.policy})
			require.NoError(t, err)
			first := d.Entry("carbon")
			require.NoError(t, first.SetWikidataID("Q623"))

			got, err := d.AddEntry("Carbon")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDictionary)
				var de *DictionaryError
				require.True(t, errors.As(err, &de))
				assert.Equal(t, RuleDuplicateTerm, de.Rule)
			} else {
				require.NoError(t, err)
				assert.Same(t, got, d.Entry("CARBON"))
				if tt.wantFresh {
					assert.Empty(t, got.WikidataID)
				} else {
					assert.Same(t, first, got)
				}
			}

			var terms []string
			for _, e := range d.Entries() {
				terms = append(terms, e.Term)
			}
			assert.Equal(t, tt.wantTerms, terms)
		})
	}
}

func TestFromTermsSkipsBlanks(t *testing.T) {
	d, err := FromTerms([]string{"climate", " ", "", "carbon", "energy"}, "t", Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.NoError(t, d.Validate())
}

func TestRemoveAndReplaceEntry(t *testing.T) {
	d, err := FromTerms([]string{"a", "b", "c"}, "t", Options{})
	require.NoError(t, err)

	assert.True(t, d.RemoveEntry("B"))
	assert.False(t, d.RemoveEntry("b"))
	assert.Nil(t, d.Entry("b"))

	old := d.Entry("a")
	old.Name = "alpha"
	fresh, err := d.ReplaceEntry("a")
	require.NoError(t, err)
	assert.NotSame(t, old, fresh)
	assert.Empty(t, fresh.Name)

	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Term)
	assert.Same(t, fresh, entries[1])
}

func TestSetWikidataID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{id: "Q49546"},
		{id: "P31"},
		{id: ""},
		{id: "q49546", wantErr: true},
		{id: "Q", wantErr: true},
		{id: "Q12a", wantErr: true},
		{id: "NOT_FOUND", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			e := &Entry{Term: "acetone", WikidataID: "Q1", WikidataURL: WikidataEntityBase + "Q1"}
			err := e.SetWikidataID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDictionary)
				assert.Equal(t, "Q1", e.WikidataID, "entry must be unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, e.WikidataID)
			if tt.id != "" {
				assert.Equal(t, WikidataEntityBase+tt.id, e.WikidataURL)
			} else {
				assert.Empty(t, e.WikidataURL)
			}
		})
	}
}

func TestEntryByWikidataIDReportsDuplicates(t *testing.T) {
	d, err := FromTerms([]string{"ethanol", "hydroxyethane", "methane", "acetone"}, "t", Options{})
	require.NoError(t, err)
	require.NoError(t, d.Entry("ethanol").SetWikidataID("Q153"))
	require.NoError(t, d.Entry("hydroxyethane").SetWikidataID("Q153"))
	require.NoError(t, d.Entry("methane").SetWikidataID("Q37129"))

	byID := d.EntryByWikidataID()
	assert.Len(t, byID, 2)
	assert.Same(t, d.Entry("ethanol"), byID["Q153"])

	assert.Equal(t, map[string][]string{"Q153": {"ethanol", "hydroxyethane"}}, d.DuplicateWikidataIDs())

	missing := d.EntriesWithoutWikidataID()
	require.Len(t, missing, 1)
	assert.Equal(t, "acetone", missing[0].Term)
}

func TestTermSet(t *testing.T) {
	d, err := FromTerms([]string{"Greenhouse Gas", "gas", "Albedo"}, "t", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"greenhouse gas", "gas", "albedo"}, d.TermSet(false))
	assert.Equal(t, []string{"greenhouse gas", "greenhouse", "gas", "albedo"}, d.TermSet(true))
}

func TestVersion(t *testing.T) {
	tests := []struct {
		version string
		valid   bool
	}{
		{"0.0.1", true},
		{"10.2.33", true},
		{"1.2", false},
		{"1.2.3.4", false},
		{"1.x.3", false},
		{"1..3", false},
		{"1.-2.3", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidVersion(tt.version))
		})
	}

	d := Minimal()
	assert.Equal(t, InitialVersion, d.Version)
	d.BumpVersion()
	assert.Equal(t, "0.0.2", d.Version)
	assert.ErrorIs(t, d.SetVersion("2"), ErrDictionary)
	require.NoError(t, d.SetVersion("2.1.9"))
	d.BumpVersion()
	assert.Equal(t, "2.1.10", d.Version)

	d.Version = "bogus"
	d.EnsureVersion()
	assert.Equal(t, InitialVersion, d.Version)
}

func TestFromWordFile(t *testing.T) {
	d, err := FromWordFile(filepath.Join("testdata", "words.txt"), "", 0, Options{})
	require.NoError(t, err)
	assert.Equal(t, "words", d.Title)
	assert.Equal(t, []string{"climate", "carbon", "energy"}, d.TermSet(false))

	limited, err := FromWordFile(filepath.Join("testdata", "words.txt"), "Climate", 2, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Climate", limited.Title)
	assert.Equal(t, 2, limited.Len())

	_, err = FromWordFile(filepath.Join("testdata", "missing.txt"), "", 0, Options{})
	assert.Error(t, err)
}

func TestFromCSV(t *testing.T) {
	const keywords = "\ufeffdocument,keyword, count\n" +
		"ch1,methane,12\n" +
		"ch1, greenhouse gas ,9\n" +
		"ch2,,3\n" +
		"ch2\n" +
		"ch3,Methane,4\n" +
		"ch3,\"carbon, black\",2\n"
	tests := []struct {
		name    string
		column  string
		title   string
		want    []string
		wantErr error
	}{
		{name: "column by header", column: "keyword", title: "kw", want: []string{"methane", "greenhouse gas", "carbon, black"}},
		{name: "first header with byte order mark", column: "document", title: "docs", want: []string{"ch1", "ch2", "ch3"}},
		{name: "header cells are trimmed", column: "count", title: "n", want: []string{"12", "9", "3", "4", "2"}},
		{name: "unknown column", column: "term", title: "kw", wantErr: ErrColumn},
		{name: "column required", column: " ", title: "kw", wantErr: ErrColumn},
		{name: "title required", column: "keyword", title: "", wantErr: ErrDictionary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromCSV(strings.NewReader(keywords), tt.column, tt.title, Options{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.title, d.Title)
			var got []string
			for _, e := range d.Entries() {
				got = append(got, e.Term)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSVColumnErrors(t *testing.T) {
	_, err := ReadCSVColumn(strings.NewReader(""), "keyword")
	assert.ErrorIs(t, err, ErrColumn)

	_, err = ReadCSVColumn(strings.NewReader("keyword\n\"unterminated\n"), "keyword")
	assert.ErrorIs(t, err, ErrParse)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "climatewords", TitleFromPath("/data/Climate Words.txt"))
	assert.Equal(t, "terms", TitleFromPath("terms"))
}

func TestParseDuplicatePolicy(t *testing.T) {
	for _, p := range []DuplicatePolicy{Ignore, Replace, Error} {
		got, err := ParseDuplicatePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseDuplicatePolicy("merge")
	assert.Error(t, err)
}

func TestEntryHelpers(t *testing.T) {
	e := &Entry{Term: "methane"}
	assert.Equal(t, "methane", e.Label())
	e.Name = "Methane"
	assert.Equal(t, "Methane", e.Label())

	assert.True(t, e.AddSynonym("en", "CH4"))
	assert.False(t, e.AddSynonym("en", "CH4"))
	assert.False(t, e.AddSynonym("en", "  "))

	e.AddSitelink("de", "https://de.wikipedia.org/wiki/Methan")
	e.AddSitelink("de", "https://de.wikipedia.org/wiki/Methan_(Gas)")
	assert.Equal(t, []Sitelink{{Lang: "de", URL: "https://de.wikipedia.org/wiki/Methan_(Gas)"}}, e.Wikipedia)

	require.NoError(t, e.SetWikidataID("Q37129"))
	assert.False(t, e.AddWikidataHit("Q37129"))
	assert.True(t, e.AddWikidataHit("Q1"))
	assert.False(t, e.AddWikidataHit("Q1"))

	e.MarkNotFound()
	assert.True(t, e.IsNotFound())
	e.SetRaw(nil)
	assert.Nil(t, e.Raw)

	c := e.Clone()
	c.Synonyms[0].Value = "changed"
	assert.Equal(t, "CH4", e.Synonyms[0].Value)
}

func TestRaw(t *testing.T) {
	r := &Raw{WikidataIDs: []string{"Q1353", "Q987"}}
	assert.Equal(t, "['Q1353', 'Q987']", r.String())
	assert.Equal(t, r, ParseRaw(r.String()))
	assert.Equal(t, []string{"NOT_FOUND"}, ParseRaw("NOT_FOUND").WikidataIDs)
	assert.Empty(t, ParseRaw("[]").WikidataIDs)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Greenhouse Gas", "greenhouse_gas"},
		{"  carbon   dioxide ", "carbon_dioxide"},
		{"Sulfur-dioxide", "sulfur-dioxide"},
		{"H2O (water)", "h2o_water"},
		{"café", "café"},
		{"!!!", "entry"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}

	seen := map[string]int{}
	assert.Equal(t, "gas", uniqueSlug("Gas", seen))
	assert.Equal(t, "gas_2", uniqueSlug("gas", seen))
	assert.Equal(t, "gas_3", uniqueSlug("GAS", seen))
}
