// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchAcetoneJSON = `{
  "searchinfo": {"search": "acetone"},
  "search": [
    {"id": "Q4676846", "label": "Acetone", "description": "album", "match": {"type": "label", "language": "de", "text": "Acetone"}},
    {"id": "Q133987", "label": "acetone peroxide", "match": {"type": "label", "language": "en", "text": "acetone peroxide"}},
    {"id": "Q49546", "label": "acetone", "description": "chemical compound", "match": {"type": "label", "language": "en", "text": "acetone"}}
  ]
}`

const entitiesJSON = `{
  "entities": {
    "Q49546": {
      "id": "Q49546",
      "labels": {"en": {"language": "en", "value": "acetone"}},
      "descriptions": {"en": {"language": "en", "value": "chemical compound"}}
    }
  }
}`

const missingEntityJSON = `{"entities": {"Q999999999": {"id": "Q999999999", "missing": ""}}}`

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/w/api.php", r.URL.Path)
		assert.Equal(t, "json", q.Get("format"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("action") == "wbsearchentities" && q.Get("search") == "acetone":
			w.Write([]byte(searchAcetoneJSON))
		case q.Get("action") == "wbsearchentities" && q.Get("search") == "acetone p":
			w.Write([]byte(`{"search": [{"id": "Q133987", "match": {"language": "en", "text": "acetone peroxide"}}]}`))
		case q.Get("action") == "wbsearchentities":
			w.Write([]byte(`{"search": []}`))
		case q.Get("ids") == "Q49546":
			w.Write([]byte(entitiesJSON))
		case q.Get("ids") == "Q999999999":
			w.Write([]byte(missingEntityJSON))
		default:
			w.Write([]byte(`{"error": {"code": "no-such-entity", "info": "Could not find an entity"}}`))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestWikidataAPISearchEntities(t *testing.T) {
	api := testClient(apiServer(t)).WikidataAPI("")
	ctx := context.Background()

	tests := []struct {
		query, want string
	}{
		{"acetone", "Q49546"},
		{"acetone p", "Q133987"},
		{"xqzzyv", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := api.SearchEntities(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 3, api.Requests())
}

func TestWikidataAPIGetEntity(t *testing.T) {
	api := testClient(apiServer(t)).WikidataAPI("EN")
	ctx := context.Background()

	s, err := api.GetEntity(ctx, "Q49546")
	require.NoError(t, err)
	assert.Equal(t, EntitySummary{ID: "Q49546", Label: "acetone", Description: "chemical compound"}, s)

	_, err = api.GetEntity(ctx, "Q49546")
	require.NoError(t, err)
	assert.Equal(t, 1, api.Requests())

	s, err = api.GetEntity(ctx, "Q999999999")
	require.NoError(t, err)
	assert.Equal(t, EntitySummary{ID: "Q999999999"}, s)

	_, err = api.GetEntity(ctx, "P0")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "no-such-entity", apiErr.Code)
}
