// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that fetch
// wiki pages or query SPARQL endpoints.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "amidict/0.1 (+https://github.com/pdiddy/amidict)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Token is an optional Wikimedia API token sent as a bearer credential.
	Token string `json:"-" yaml:"-" mapstructure:"-"`

	// MaxRetries bounds retries on HTTP 429 and 503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// LookupConfig holds settings for term lookup and entry enrichment.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Delay is the pause between consecutive lookups (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// MaxCandidates caps the Wikidata candidates kept per term (default 5).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// AllowedDescriptions restricts accepted Wikidata hits to those whose
	// description contains one of these strings. "ANY" or empty accepts all.
	AllowedDescriptions []string `json:"allowed_descriptions" yaml:"allowed_descriptions" mapstructure:"allowed_descriptions"`

	// Languages selects the sitelink languages attached to entries.
	// "en" populates the wikipediaPage attribute; others become children.
	Languages []string `json:"languages" yaml:"languages" mapstructure:"languages"`

	// Replace re-runs enrichment on entries that already carry a result.
	Replace bool `json:"replace" yaml:"replace" mapstructure:"replace"`
}

// Sources selects which knowledge sources enrich a dictionary.
type Sources struct {
	Wikidata   bool `json:"wikidata" yaml:"wikidata"`
	Wikipedia  bool `json:"wikipedia" yaml:"wikipedia"`
	Wiktionary bool `json:"wiktionary" yaml:"wiktionary"`
}

// Any reports whether at least one source is enabled.
func (s Sources) Any() bool {
	return s.Wikidata || s.Wikipedia || s.Wiktionary
}

// BuildConfig holds settings for building a dictionary from a word list.
type BuildConfig struct {
	LookupConfig `yaml:",inline" mapstructure:",squash"`

	// Title is the dictionary title. Derived from the word file name when empty.
	Title string `json:"title" yaml:"title"`

	// MaxEntries limits the number of words read (0 means no limit).
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	// Sources selects the enrichment sources.
	Sources Sources `json:"sources" yaml:"sources"`

	// OutPath is the dictionary output path (.xml or .html).
	OutPath string `json:"out_path" yaml:"out_path"`
}

// AnnotateConfig holds settings for marking up an HTML corpus file.
type AnnotateConfig struct {
	// ParagraphSelector is the CSS selector for annotatable blocks (default "p").
	ParagraphSelector string `json:"paragraph_selector" yaml:"paragraph_selector" mapstructure:"paragraph_selector"`

	// Regex treats dictionary terms as regular-expression fragments
	// instead of literal phrases.
	Regex bool `json:"regex" yaml:"regex" mapstructure:"regex"`

	// IndexPath is where the hit index page is written (default index.html
	// beside the output file).
	IndexPath string `json:"index_path" yaml:"index_path" mapstructure:"index_path"`
}

// SPARQLConfig holds settings for SPARQL updates.
type SPARQLConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the SPARQL endpoint URL (default https://query.wikidata.org/sparql).
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`
}

// CacheConfig enables the on-disk HTTP response cache.
type CacheConfig struct {
	// Path is the SQLite database file. Empty disables caching.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// TTL is how long a cached response stays fresh (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "json" or "text" (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings read from the config file.
type Config struct {
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Lookup   LookupConfig   `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Annotate AnnotateConfig `json:"annotate" yaml:"annotate" mapstructure:"annotate"`
	SPARQL   SPARQLConfig   `json:"sparql" yaml:"sparql" mapstructure:"sparql"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
}
