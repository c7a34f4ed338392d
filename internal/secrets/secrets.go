// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed file
// contents are the value.
//
// Recognised keys: wikimedia-api-token, contact-url.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Key names read from the secrets directory.
const (
	KeyWikimediaToken = "wikimedia-api-token"
	KeyContactURL     = "contact-url"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all regular, non-hidden files in dir. A missing directory is
// not an error and yields an empty set. Unreadable files are logged and
// skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Token returns the Wikimedia API token, if any.
func (s Secrets) Token() string {
	return s[KeyWikimediaToken]
}

// UserAgent returns product with the contact URL appended in the
// "<product>/<version> (+<contact URL>)" form. A product that already
// carries a contact is returned unchanged.
func (s Secrets) UserAgent(product string) string {
	contact := s[KeyContactURL]
	if contact == "" || strings.Contains(product, "(") {
		return product
	}
	return fmt.Sprintf("%s (+%s)", product, contact)
}
