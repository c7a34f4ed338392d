// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/amidict/internal/lookup"
	"github.com/pdiddy/amidict/internal/sparql"
	"github.com/pdiddy/amidict/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config merges the config file, AMIDICT_* environment variables and
built-in defaults and prints the result. Secrets are never printed.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	configCmd.Flags().Duration("delay", 0, "delay between consecutive entries (default 1s)")

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	cfg.HTTP = httpConfig(cmd)
	cfg.SPARQL.HTTPConfig = cfg.HTTP
	cfg.Lookup = lookupConfig(cmd)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Lookup.MaxCandidates == 0 {
		cfg.Lookup.MaxCandidates = lookup.MaxCandidates
	}
	if cfg.SPARQL.Endpoint == "" {
		cfg.SPARQL.Endpoint = viper.GetString("sparql.endpoint")
	}
	if cfg.SPARQL.Endpoint == "" {
		cfg.SPARQL.Endpoint = sparql.DefaultEndpoint
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
