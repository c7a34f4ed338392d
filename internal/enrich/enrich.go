// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich fills dictionary entries from Wikidata, Wikipedia and
// Wiktionary. Each operation changes an entry only after its lookups have
// succeeded, so a failed lookup leaves the entry as it was.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/amidict/internal/lookup"
	"github.com/pdiddy/amidict/internal/wiki"
	"github.com/pdiddy/amidict/pkg/types"
)

// AnyDescription in AllowedDescriptions accepts every Wikidata description.
const AnyDescription = "ANY"

// DefaultWiktionaryLanguage is the language section read from Wiktionary.
const DefaultWiktionaryLanguage = "English"

// Enricher mutates entries using a Lookup.
type Enricher struct {
	Lookup *lookup.Lookup

	// API resolves labels and descriptions of candidate Q-IDs during
	// disambiguation. Nil falls back to fetching entity pages.
	API *wiki.WikidataAPI

	// Languages selects sitelinks to attach; "en" fills wikipediaPage.
	Languages []string

	// AllowedDescriptions restricts accepted Wikidata hits to those whose
	// description contains one of the strings. Empty or AnyDescription
	// accepts every hit.
	AllowedDescriptions []string

	WiktionaryLanguage string

	// Delay separates entries in EnrichAll.
	Delay time.Duration

	// Replace re-enriches entries that already carry data for a source.
	Replace bool

	Logger *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Enricher configured from cfg.
func New(l *lookup.Lookup, cfg types.LookupConfig, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	e := &Enricher{
		Lookup:              l,
		Languages:           langs,
		AllowedDescriptions: cfg.AllowedDescriptions,
		WiktionaryLanguage:  DefaultWiktionaryLanguage,
		Delay:               cfg.Delay,
		Replace:             cfg.Replace,
		Logger:              logger.With("component", "enrich"),
	}
	if l != nil && l.Client != nil {
		e.API = l.Client.WikidataAPI(langs[0])
	}
	return e
}

func (en *Enricher) logger() *slog.Logger {
	if en.Logger == nil {
		return slog.Default()
	}
	return en.Logger
}

func (en *Enricher) languages() []string {
	if len(en.Languages) == 0 {
		return []string{"en"}
	}
	return en.Languages
}

func (en *Enricher) wiktionaryLanguage() string {
	if en.WiktionaryLanguage == "" {
		return DefaultWiktionaryLanguage
	}
	return en.WiktionaryLanguage
}

// restricted reports whether AllowedDescriptions filters anything.
func (en *Enricher) restricted() bool {
	for _, a := range en.AllowedDescriptions {
		if a == AnyDescription {
			return false
		}
	}
	return len(en.AllowedDescriptions) > 0
}

// descriptionAllowed reports whether desc passes AllowedDescriptions.
// The comparison is a case-insensitive substring match.
func (en *Enricher) descriptionAllowed(desc string) bool {
	if !en.restricted() {
		return true
	}
	desc = strings.ToLower(desc)
	for _, a := range en.AllowedDescriptions {
		if a != "" && strings.Contains(desc, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// wait pauses for d or until ctx is done.
func (en *Enricher) wait(ctx context.Context, d time.Duration) error {
	if en.sleep != nil {
		return en.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
