// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared configuration structures for depscope.
// See docs/ARCHITECTURE § Configuration.
package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "depscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the code-search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the Sourcegraph GraphQL API URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Token is an optional Sourcegraph API token used to avoid rate
	// limiting. Usually loaded from .secrets/sourcegraph-api-token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// Count is the maximum number of matches to fetch per language:
	// a positive integer or "all".
	Count string `json:"count" yaml:"count"`

	// SearchTimeout is the server-side search timeout, expressed as a
	// duration string ("10s", "500ms") or integer milliseconds. The API
	// rejects values over one minute.
	SearchTimeout string `json:"search_timeout" yaml:"search_timeout"`

	// Languages lists the languages to fetch ("Python", "Jupyter Notebook").
	// Empty means all supported languages.
	Languages []string `json:"languages" yaml:"languages"`
}

// CacheConfig holds settings for the local fetch cache.
type CacheConfig struct {
	// Dir is the directory holding the cache database.
	// Empty means ~/.cache/depscope.
	Dir string `json:"dir" yaml:"dir"`

	// MaxAge is how long a cached fetch stays fresh. Zero means the
	// built-in default of 24 hours.
	MaxAge time.Duration `json:"max_age" yaml:"max_age"`
}

// Config groups all depscope configuration.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "depscope/0.1",
			},
			Endpoint:      "https://sourcegraph.com/.api/graphql",
			Count:         "all",
			SearchTimeout: "10s",
		},
		Cache: CacheConfig{
			MaxAge: 24 * time.Hour,
		},
	}
}
