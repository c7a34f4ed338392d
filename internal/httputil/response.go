// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// maxInvalidRatio is the share of undecodable bytes above which a body is
// treated as binary rather than repaired.
const maxInvalidRatio = 0.1

// Text decodes the body to a UTF-8 string. A declared non-UTF-8 charset is
// transcoded; stray invalid sequences in UTF-8 text are replaced with
// U+FFFD. Bodies that look binary fail with ErrDecode.
func (r *Response) Text() (string, error) {
	return DecodeText(r.Body, r.ContentType)
}

// HTML decodes the body and parses it leniently into a DOM tree.
func (r *Response) HTML() (*html.Node, error) {
	text, err := r.Text()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.URL, err)
	}
	return ParseHTML(text)
}

// DecodeText converts body to a UTF-8 string using contentType as a hint.
func DecodeText(body []byte, contentType string) (string, error) {
	if bytes.IndexByte(body, 0) >= 0 {
		return "", fmt.Errorf("%w: body contains NUL bytes", ErrDecode)
	}
	if utf8.Valid(body) {
		return string(body), nil
	}

	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name != "utf-8" && enc != nil {
		decoded, err := enc.NewDecoder().Bytes(body)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), nil
		}
	}

	if invalidRatio(body) > maxInvalidRatio {
		return "", fmt.Errorf("%w: body is not valid UTF-8", ErrDecode)
	}
	return strings.ToValidUTF8(string(body), "�"), nil
}

// invalidRatio returns the fraction of bytes that start an invalid UTF-8 sequence.
func invalidRatio(body []byte) float64 {
	if len(body) == 0 {
		return 0
	}
	invalid := 0
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRune(body[i:])
		if r == utf8.RuneError && size <= 1 {
			invalid++
			i++
			continue
		}
		i += size
	}
	return float64(invalid) / float64(len(body))
}

// ParseHTML parses text into a DOM tree. The parser repairs malformed
// markup rather than failing.
func ParseHTML(text string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrDecode, err)
	}
	return doc, nil
}

// GetHTML fetches rawURL through g and parses the body.
func GetHTML(ctx context.Context, g Getter, rawURL string) (*html.Node, *Response, error) {
	resp, err := g.Get(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := resp.HTML()
	if err != nil {
		return nil, resp, err
	}
	return doc, resp, nil
}

// GetJSON fetches rawURL through g and decodes the JSON body into v.
func GetJSON(ctx context.Context, g Getter, rawURL string, v any) error {
	resp, err := g.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: decoding JSON from %s: %v", ErrDecode, rawURL, err)
	}
	return nil
}
