// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/amidict/internal/httputil"
)

// EntitySummary is the label and description of an entity in one language.
type EntitySummary struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// APIError is an error object returned by the Wikidata API.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wikidata api: %s: %s", e.Code, e.Info)
}

type searchResponse struct {
	Error  *APIError `json:"error"`
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
		Match       struct {
			Type     string `json:"type"`
			Language string `json:"language"`
			Text     string `json:"text"`
		} `json:"match"`
	} `json:"search"`
}

type langValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type entitiesResponse struct {
	Error    *APIError `json:"error"`
	Entities map[string]struct {
		ID           string               `json:"id"`
		Missing      *string              `json:"missing"`
		Labels       map[string]langValue `json:"labels"`
		Descriptions map[string]langValue `json:"descriptions"`
	} `json:"entities"`
}

// WikidataAPI queries the Wikidata JSON API. Entity summaries are kept for
// the lifetime of the value.
type WikidataAPI struct {
	client   *Client
	lang     string
	cache    map[string]EntitySummary
	requests int
}

// WikidataAPI returns an API handle for lang (default "en").
func (c *Client) WikidataAPI(lang string) *WikidataAPI {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = "en"
	}
	return &WikidataAPI{client: c, lang: lang, cache: make(map[string]EntitySummary)}
}

// Requests returns the number of API calls made.
func (a *WikidataAPI) Requests() int { return a.requests }

func (a *WikidataAPI) endpoint(params url.Values) string {
	params.Set("language", a.lang)
	params.Set("format", "json")
	return a.client.Sites.Wikidata + "/w/api.php?" + params.Encode()
}

// SearchEntities returns the id of the best match for query: an exact text
// match in the API language if there is one, else the first match in that
// language. It returns "" when nothing matches.
func (a *WikidataAPI) SearchEntities(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}
	var resp searchResponse
	a.requests++
	err := httputil.GetJSON(ctx, a.client.Getter, a.endpoint(url.Values{
		"action": {"wbsearchentities"},
		"search": {query},
	}), &resp)
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error
	}

	guess := ""
	for _, item := range resp.Search {
		if item.ID == "" || item.Match.Language != a.lang {
			continue
		}
		if guess == "" {
			guess = item.ID
		}
		if strings.EqualFold(strings.TrimSpace(item.Match.Text), query) {
			return item.ID, nil
		}
	}
	return guess, nil
}

// GetEntity returns the label and description of id.
func (a *WikidataAPI) GetEntity(ctx context.Context, id string) (EntitySummary, error) {
	if s, ok := a.cache[id]; ok {
		return s, nil
	}
	var resp entitiesResponse
	a.requests++
	err := httputil.GetJSON(ctx, a.client.Getter, a.endpoint(url.Values{
		"action": {"wbgetentities"},
		"ids":    {id},
	}), &resp)
	if err != nil {
		return EntitySummary{}, err
	}
	if resp.Error != nil {
		return EntitySummary{}, resp.Error
	}

	s := EntitySummary{ID: id}
	if e, ok := resp.Entities[id]; ok && e.Missing == nil {
		s.Label = e.Labels[a.lang].Value
		s.Description = e.Descriptions[a.lang].Value
	}
	a.cache[id] = s
	return s, nil
}
