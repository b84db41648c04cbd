// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdiddy/depscope/pkg/types"
)

// loadConfig merges the built-in defaults with values from the config file
// and DEPSCOPE_* environment variables. The API token falls back to
// .secrets/sourcegraph-api-token.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if v := viper.GetString("search.endpoint"); v != "" {
		cfg.Search.Endpoint = v
	}
	if v := viper.GetString("search.count"); v != "" {
		cfg.Search.Count = v
	}
	if v := viper.GetString("search.search_timeout"); v != "" {
		cfg.Search.SearchTimeout = v
	}
	if v := viper.GetDuration("search.timeout"); v > 0 {
		cfg.Search.Timeout = v
	}
	if v := viper.GetString("search.user_agent"); v != "" {
		cfg.Search.UserAgent = v
	}
	if v := viper.GetStringSlice("search.languages"); len(v) > 0 {
		cfg.Search.Languages = v
	}
	cfg.Search.Token = secretDefault("sourcegraph-api-token", viper.GetString("search.token"))

	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetDuration("cache.max_age"); v > 0 {
		cfg.Cache.MaxAge = v
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}

	return cfg
}

// defaultCacheDir returns ~/.cache/depscope (or the platform equivalent),
// falling back to a local .depscope-cache directory.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".depscope-cache"
	}
	return filepath.Join(base, "depscope")
}
