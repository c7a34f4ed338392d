// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"strconv"
	"strings"
	"unicode"
)

// Slug turns a name into an HTML id: lowercased, whitespace runs replaced
// by a single underscore, and everything but letters, digits, '-', '_'
// and '.' dropped.
func Slug(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsSpace(r) || r == '_':
			pendingSep = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.':
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "entry"
	}
	return b.String()
}

// uniqueSlug returns Slug(name), suffixed with _2, _3, ... when an earlier
// call with the same seen map produced the same slug.
func uniqueSlug(name string, seen map[string]int) string {
	base := Slug(name)
	seen[base]++
	if seen[base] == 1 {
		return base
	}
	for n := seen[base]; ; n++ {
		s := base + "_" + strconv.Itoa(n)
		if seen[s] == 0 {
			seen[s] = 1
			return s
		}
	}
}
