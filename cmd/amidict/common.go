// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/amidict/internal/enrich"
	"github.com/pdiddy/amidict/internal/fetchcache"
	"github.com/pdiddy/amidict/internal/httputil"
	"github.com/pdiddy/amidict/internal/lookup"
	"github.com/pdiddy/amidict/internal/wiki"
	"github.com/pdiddy/amidict/pkg/dictionary"
	"github.com/pdiddy/amidict/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "amidict/0.1 (+https://github.com/pdiddy/amidict)"
)

// commandContext returns a context cancelled on interrupt.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// durationSetting returns the flag value, else the config value, else def.
func durationSetting(cmd *cobra.Command, flag, key string, def time.Duration) time.Duration {
	if d, _ := cmd.Flags().GetDuration(flag); d > 0 {
		return d
	}
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return def
}

func httpConfig(cmd *cobra.Command) types.HTTPConfig {
	ua := viper.GetString("http.user_agent")
	if ua == "" {
		ua = loadedSecrets.UserAgent(defaultUserAgent)
	}
	return types.HTTPConfig{
		Timeout:    durationSetting(cmd, "timeout", "http.timeout", defaultTimeout),
		UserAgent:  ua,
		Token:      loadedSecrets.Token(),
		MaxRetries: viper.GetInt("http.max_retries"),
	}
}

// addLookupFlags registers the flags read by lookupConfig.
func addLookupFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	cmd.Flags().Duration("delay", 0, "delay between consecutive entries (default 1s)")
	cmd.Flags().StringSlice("languages", nil, "sitelink languages to attach (default en)")
	cmd.Flags().StringSlice("allowed-descriptions", nil, "accept only Wikidata hits whose description contains one of these (ANY accepts all)")
	cmd.Flags().Bool("replace", false, "re-enrich entries that already carry data")
}

func lookupConfig(cmd *cobra.Command) types.LookupConfig {
	cfg := types.LookupConfig{
		HTTPConfig:    httpConfig(cmd),
		Delay:         durationSetting(cmd, "delay", "http.delay", defaultDelay),
		MaxCandidates: viper.GetInt("lookup.max_candidates"),
	}
	if f := cmd.Flags().Lookup("languages"); f != nil {
		cfg.Languages, _ = cmd.Flags().GetStringSlice("languages")
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = viper.GetStringSlice("lookup.languages")
	}
	if f := cmd.Flags().Lookup("allowed-descriptions"); f != nil {
		cfg.AllowedDescriptions, _ = cmd.Flags().GetStringSlice("allowed-descriptions")
	}
	if len(cfg.AllowedDescriptions) == 0 {
		cfg.AllowedDescriptions = viper.GetStringSlice("lookup.allowed_descriptions")
	}
	cfg.Replace, _ = cmd.Flags().GetBool("replace")
	return cfg
}

// newGetter returns the fetcher, wrapped in the response cache when
// cache.path is configured. The returned func releases the cache.
func newGetter(cfg types.HTTPConfig) (httputil.Getter, func(), error) {
	f := httputil.NewFetcher(cfg, slog.Default())
	path := viper.GetString("cache.path")
	if path == "" {
		return f, func() {}, nil
	}
	c, err := fetchcache.Open(types.CacheConfig{Path: path, TTL: viper.GetDuration("cache.ttl")}, f, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return c, func() {
		hits, misses := c.Stats()
		slog.Info("fetch cache", "hits", hits, "misses", misses)
		c.Close()
	}, nil
}

// newLookup wires fetcher, wiki client and lookup from cfg.
func newLookup(cfg types.LookupConfig) (*lookup.Lookup, func(), error) {
	g, closeFn, err := newGetter(cfg.HTTPConfig)
	if err != nil {
		return nil, nil, err
	}
	client := wiki.NewClient(g, slog.Default())
	return lookup.New(client, cfg, slog.Default()), closeFn, nil
}

// newEnricher wires an enricher over newLookup.
func newEnricher(cfg types.LookupConfig) (*enrich.Enricher, func(), error) {
	l, closeFn, err := newLookup(cfg)
	if err != nil {
		return nil, nil, err
	}
	return enrich.New(l, cfg, slog.Default()), closeFn, nil
}

// loadDictionary reads an XML or HTML dictionary from a file or an
// http(s) URL.
func loadDictionary(cmd *cobra.Command, path string) (*dictionary.Dictionary, error) {
	if path == "" {
		return nil, fmt.Errorf("--dict is required")
	}
	if !dictionary.IsURL(path) {
		return dictionary.Load(path, dictionary.Options{})
	}
	g, closeFn, err := newGetter(httpConfig(cmd))
	if err != nil {
		return nil, err
	}
	defer closeFn()
	ctx, cancel := commandContext()
	defer cancel()
	return dictionary.FromURL(ctx, g, path, dictionary.Options{})
}

// outputPath returns --out, defaulting to the source dictionary path. A
// dictionary read from a URL cannot be overwritten.
func outputPath(cmd *cobra.Command, source string) (string, error) {
	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		return out, nil
	}
	if dictionary.IsURL(source) {
		return "", fmt.Errorf("--out is required when --dict is a URL")
	}
	return source, nil
}
