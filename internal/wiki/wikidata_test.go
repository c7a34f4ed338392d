// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/amidict/internal/httputil"
)

func methaneEntity(t *testing.T) *WikidataPage {
	t.Helper()
	return NewWikidataPage(parseFixture(t, "wikidata_Q37129.html"), "https://www.wikidata.org/wiki/Q37129")
}

func TestWikidataPageTerms(t *testing.T) {
	p := methaneEntity(t)
	assert.Equal(t, "methane", p.Title())
	assert.Equal(t, "Q37129", p.QID())
	assert.Equal(t, "simplest alkane molecule", p.Description())
	assert.Equal(t, []string{"CH4", "marsh gas", "carbane"}, p.Aliases())
}

func TestWikidataPageProperties(t *testing.T) {
	p := methaneEntity(t)
	assert.Equal(t, []string{"P31", "P274", "P2067", "P2101"}, p.PropertyIDs())

	props := p.Properties()
	require.Len(t, props, 4)
	assert.Equal(t, "instance of", props[0].Label)
	assert.Equal(t, []Snak{
		{Kind: SnakEntity, Value: "Q11173", Label: "chemical compound"},
		{Kind: SnakEntity, Value: "Q113145171", Label: "type of chemical entity"},
	}, props[0].Values)

	tests := []struct {
		pid  string
		want Snak
	}{
		{"P274", Snak{Kind: SnakString, Value: "CH₄"}},
		{"P2067", Snak{Kind: SnakQuantity, Value: "16.031 dalton"}},
		{"P2101", Snak{Kind: SnakQuantity, Value: "−182.456 ±0.001 degree Celsius"}},
	}
	for _, tt := range tests {
		t.Run(tt.pid, func(t *testing.T) {
			vals := p.ValuesForProperty(tt.pid)
			require.Len(t, vals, 1)
			assert.Equal(t, tt.want, vals[0])
		})
	}
	assert.Nil(t, p.ValuesForProperty("P999"))
}

func TestWikidataPageHasStatement(t *testing.T) {
	p := methaneEntity(t)
	assert.True(t, p.HasStatement("P31", "Q11173"))
	assert.False(t, p.HasStatement("P31", "Q52"), "qualifier values are not main values")
	assert.False(t, p.HasStatement("P279", "Q11173"))
}

func TestWikidataPageSitelinks(t *testing.T) {
	links := methaneEntity(t).Sitelinks([]string{"en", "DE", "fr", ""})
	assert.Equal(t, map[string]string{
		"en": "https://en.wikipedia.org/wiki/Methane",
		"de": "https://de.wikipedia.org/wiki/Methan",
	}, links)
}

func TestWikidataPageEmpty(t *testing.T) {
	doc, err := httputil.ParseHTML("<p>Not an entity page</p>")
	require.NoError(t, err)
	p := NewWikidataPage(doc, "")
	assert.Empty(t, p.Title())
	assert.Empty(t, p.QID())
	assert.Nil(t, p.Aliases())
	assert.Nil(t, p.Properties())
	assert.Empty(t, p.Sitelinks([]string{"en"}))
}
