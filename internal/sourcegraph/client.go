// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sourcegraph queries the Sourcegraph code-search API for files
// importing a Python module and extracts their dependency usage.
// See docs/ARCHITECTURE § Code Search.
package sourcegraph

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/depscope/internal/httputil"
	"github.com/pdiddy/depscope/internal/pysrc"
	"github.com/pdiddy/depscope/pkg/types"
)

//go:embed query.graphql
var searchQueryDoc string

// Client fetches import matches from the Sourcegraph GraphQL API.
type Client struct {
	httpClient *http.Client
	cfg        types.SearchConfig
}

// NewClient creates a Client from the search configuration. Zero-valued
// fields fall back to the defaults in types.DefaultConfig.
func NewClient(cfg types.SearchConfig) *Client {
	defaults := types.DefaultConfig().Search
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Count == "" {
		cfg.Count = defaults.Count
	}
	if cfg.SearchTimeout == "" {
		cfg.SearchTimeout = defaults.SearchTimeout
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = Languages
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Fetch queries every configured language for files importing module,
// extracts each file's dependencies, and merges the per-language results.
// Progress lines are written to w.
func (c *Client) Fetch(ctx context.Context, module string, w io.Writer) (*Results, error) {
	if module == "" {
		return nil, fmt.Errorf("module name is empty")
	}

	var merged Results
	for _, language := range c.cfg.Languages {
		fmt.Fprintf(w, "Fetching %s source code containing imports of %s...\n", language, module)
		results, err := c.fetchLanguage(ctx, module, language)
		if err != nil {
			return nil, fmt.Errorf("fetching %s matches: %w", language, err)
		}
		fmt.Fprintf(w, "Extracting dependencies from %d %s files...\n", len(results.Matches), language)
		extractDependencies(&results, module, language)
		merged.Merge(results)
	}

	if n := merged.ParseErrorCount(); n > 0 {
		fmt.Fprintf(w, "warning: %d file(s) could not be analyzed\n", n)
	}
	return &merged, nil
}

// fetchLanguage runs one search query and decodes the envelope.
func (c *Client) fetchLanguage(ctx context.Context, module, language string) (Results, error) {
	query, err := buildSearchQuery(module, language, c.cfg.Count, c.cfg.SearchTimeout)
	if err != nil {
		return Results{}, err
	}

	body, err := json.Marshal(graphqlRequest{
		Query:     searchQueryDoc,
		Variables: map[string]string{"query": query},
	})
	if err != nil {
		return Results{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Results{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+c.cfg.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return Results{}, fmt.Errorf("search API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Results{}, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var gr graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Results{}, fmt.Errorf("parsing search API response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return Results{}, fmt.Errorf("search API error: %s", joinGraphqlErrors(gr.Errors))
	}

	return gr.Data.Search.Results.toResults(), nil
}

// extractDependencies replaces each file's content with its extracted
// dependency list. Files that fail analysis keep an empty dependency list
// and record the error.
func extractDependencies(results *Results, module, language string) {
	for i := range results.Matches {
		file := &results.Matches[i].File
		file.Language = language

		src, err := analyzeContent(file.Content, language)
		file.Content = ""
		if err != nil {
			file.Dependencies = []string{}
			file.ParseError = err.Error()
			continue
		}
		deps := src.Dependencies(module)
		if deps == nil {
			deps = []string{}
		}
		file.Dependencies = deps
	}
}

func analyzeContent(content, language string) (*pysrc.Source, error) {
	if language == "Jupyter Notebook" {
		return pysrc.FromNotebook([]byte(content))
	}
	return pysrc.FromString(content)
}
