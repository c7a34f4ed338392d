// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breadPage(t *testing.T) *WiktionaryPage {
	t.Helper()
	return NewWiktionaryPage(parseFixture(t, "wiktionary_bread.html"), "https://en.wiktionary.org/wiki/bread")
}

func TestWiktionarySplitByLanguage(t *testing.T) {
	sections := breadPage(t).SplitByLanguage()
	require.Len(t, sections, 2)

	english := sections[0]
	assert.Equal(t, "English", english.Language)
	require.Len(t, english.Parts, 2)

	noun := english.Parts[0]
	assert.Equal(t, "Noun", noun.Name)
	assert.Equal(t, "bread (countable and uncountable, plural breads)", noun.Headword)
	assert.Equal(t, []string{
		"A foodstuff made by baking dough made from cereals.",
		"(slang) Money.",
	}, noun.Definitions)

	verb := english.Parts[1]
	assert.Equal(t, "Verb", verb.Name)
	assert.Equal(t, []string{"To coat with breadcrumbs."}, verb.Definitions)

	assert.Equal(t, "Scots", sections[1].Language)
	require.Len(t, sections[1].Parts, 1)
	assert.Equal(t, []string{"breadth"}, sections[1].Parts[0].Definitions)
}

func TestWiktionaryDefinitions(t *testing.T) {
	p := breadPage(t)
	tests := []struct {
		lang, pos string
		want      []string
	}{
		{"English", "verb", []string{"To coat with breadcrumbs."}},
		{"english", "", []string{
			"A foodstuff made by baking dough made from cereals.",
			"(slang) Money.",
			"To coat with breadcrumbs.",
		}},
		{"Scots", "Noun", []string{"breadth"}},
		{"French", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.pos, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Definitions(tt.lang, tt.pos))
		})
	}
}

func TestWiktionaryNotFound(t *testing.T) {
	p := NewWiktionaryPage(parseFixture(t, "wiktionary_missing.html"), "")
	assert.True(t, p.HasNotFoundMessage())
	assert.NotNil(t, p.MWContent())
	assert.Nil(t, p.SplitByLanguage())
}

func TestPartOfSpeech(t *testing.T) {
	assert.Equal(t, "Noun", partOfSpeech("Noun"))
	assert.Equal(t, "Proper noun", partOfSpeech("Proper noun"))
	assert.Equal(t, "Verb", partOfSpeech("Verb 2"))
	assert.Empty(t, partOfSpeech("Etymology"))
	assert.Empty(t, partOfSpeech("Nouns"))
}
