// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/amidict/internal/httputil"
)

func TestParseBasicInfo_PageInfoTable(t *testing.T) {
	b := ParseBasicInfo(parseFixture(t, "info_methane.html"))
	require.NotNil(t, b)

	assert.Equal(t, "Methane", b.DisplayTitle())
	assert.Equal(t, "Hydrocarbon compound (CH4)", b.LocalDescription())
	assert.Equal(t, "chemical compound", b.CentralDescription())
	assert.Equal(t, "en - English", b.ContentLanguage())
	assert.Equal(t, 19365, b.PageID())
	assert.Equal(t, 1021, b.Watchers())
	assert.Equal(t, "Q37129", b.WikidataItemID())
	assert.Equal(t, "/wiki/File:Methane-CRC-MW-3D-balls.png", b.PageImage())
	assert.Equal(t, "27", b.Get(LabelRedirects))
	assert.Equal(t, LabelDisplayTitle, b.Labels[0])
	assert.Len(t, b.Labels, 11)
}

func TestParseBasicInfo_TableAfterHeading(t *testing.T) {
	b := ParseBasicInfo(parseFixture(t, "info_delhi.html"))
	require.NotNil(t, b)
	assert.Equal(t, DisambiguationDescription, b.CentralDescription())
	assert.Equal(t, "Q1203898", b.WikidataItemID())
	assert.Equal(t, 1503042, b.PageID())
	assert.Zero(t, b.Watchers())
}

func TestParseBasicInfo_Missing(t *testing.T) {
	doc, err := httputil.ParseHTML("<p>no table here</p>")
	require.NoError(t, err)
	b := ParseBasicInfo(doc)
	assert.Nil(t, b)
	assert.Empty(t, b.CentralDescription())
}
