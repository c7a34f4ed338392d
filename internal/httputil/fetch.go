// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/amidict/pkg/types"
)

// Sentinel errors for fetch failures. Test with errors.Is.
var (
	// ErrNetwork marks transport failures and unexpected HTTP statuses.
	// Callers may retry.
	ErrNetwork = errors.New("network error")

	// ErrNotFound marks HTTP 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrDecode marks bodies that are not text and cannot be decoded.
	ErrDecode = errors.New("decode error")
)

// maxBodySize bounds the bytes read from one response.
const maxBodySize = 16 << 20

// FetchError describes a failed request. Kind is one of the sentinel
// errors; Cause is the underlying transport error, if any. Body holds the
// response body for non-2xx statuses so callers can inspect error pages.
type FetchError struct {
	URL        string
	StatusCode int
	Body       []byte
	Kind       error
	Cause      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("fetching %s: %v: %v", e.URL, e.Kind, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Kind)
	}
}

// Unwrap exposes both the sentinel kind and the transport cause.
func (e *FetchError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Response is a fetched body with the metadata needed to decode it.
type Response struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Getter retrieves a URL. Fetcher implements it; fetchcache.Cache wraps
// any Getter with a persistent memo.
type Getter interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Fetcher issues GET and POST requests with a pinned User-Agent.
// It sends no cookies and relies on the client for redirects.
type Fetcher struct {
	Client     *http.Client
	UserAgent  string
	Token      string
	MaxRetries int
	Logger     *slog.Logger
}

// NewFetcher returns a Fetcher configured from cfg.
func NewFetcher(cfg types.HTTPConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Client:     &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		Token:      cfg.Token,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger.With("component", "fetch"),
	}
}

// Get fetches rawURL. A 404 yields a FetchError of kind ErrNotFound with
// the body attached; other non-2xx statuses yield kind ErrNetwork.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrNetwork, Cause: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	return f.do(ctx, req)
}

// PostForm submits form to rawURL with the given Accept header.
func (f *Fetcher) PostForm(ctx context.Context, rawURL string, form url.Values, accept string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrNetwork, Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return f.do(ctx, req)
}

func (f *Fetcher) do(ctx context.Context, req *http.Request) (*Response, error) {
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rawURL := req.URL.String()
	logger.Debug("request", "method", req.Method, "url", rawURL)

	resp, err := DoWithRetry(ctx, client, req, f.MaxRetries)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Kind: ErrNetwork, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Kind: ErrNetwork, Cause: err}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Body: body, Kind: ErrNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logger.Warn("unexpected status", "url", rawURL, "status", resp.StatusCode)
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Body: body, Kind: ErrNetwork}
	}

	return &Response{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
