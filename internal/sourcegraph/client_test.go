// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sourcegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/depscope/pkg/types"
)

// searchResponse builds the GraphQL response body the API would return for
// one file match per content string.
func searchResponse(contents ...string) string {
	matches := make([]map[string]any, len(contents))
	for i, content := range contents {
		matches[i] = map[string]any{
			"__typename": "FileMatch",
			"repository": map[string]any{"name": fmt.Sprintf("github.com/example/repo%d", i), "stars": i},
			"file": map[string]any{
				"name":    fmt.Sprintf("file%d.py", i),
				"path":    fmt.Sprintf("src/file%d.py", i),
				"url":     fmt.Sprintf("/example/repo%d/-/blob/src/file%d.py", i, i),
				"content": content,
			},
		}
	}
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"search": map[string]any{
				"results": map[string]any{
					"matchCount":        len(contents),
					"repositoriesCount": len(contents),
					"results":           matches,
				},
			},
		},
	})
	if err != nil {
		panic(err)
	}
	return string(body)
}

func newTestClient(endpoint string) *Client {
	return NewClient(types.SearchConfig{
		Endpoint:  endpoint,
		Token:     "test-token",
		Languages: []string{"Python"},
	})
}

func TestFetchExtractsDependencies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if !strings.Contains(req.Variables["query"], `language:"Python"`) {
			t.Errorf("search query missing language filter: %q", req.Variables["query"])
		}
		fmt.Fprint(w, searchResponse(
			"import nltk\nnltk.download('punkt')\n",
			"from nltk import tokenize\ntokenize.sent_tokenize(text)\n",
		))
	}))
	defer ts.Close()

	results, err := newTestClient(ts.URL).Fetch(context.Background(), "nltk", io.Discard)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if len(results.Matches) != 2 {
		t.Fatalf("len(Matches) = %d, want 2", len(results.Matches))
	}
	want0 := []string{"nltk.download"}
	if got := results.Matches[0].File.Dependencies; !reflect.DeepEqual(got, want0) {
		t.Errorf("file 0 dependencies = %v, want %v", got, want0)
	}
	want1 := []string{"nltk.tokenize.sent_tokenize"}
	if got := results.Matches[1].File.Dependencies; !reflect.DeepEqual(got, want1) {
		t.Errorf("file 1 dependencies = %v, want %v", got, want1)
	}
	for i, m := range results.Matches {
		if m.File.Content != "" {
			t.Errorf("file %d content not cleared after extraction", i)
		}
		if m.File.Language != "Python" {
			t.Errorf("file %d language = %q", i, m.File.Language)
		}
	}
}

func TestFetchRecordsParseErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchResponse(
			"import os\nos.getcwd()\n",
			"def broken(:\n",
		))
	}))
	defer ts.Close()

	var progress strings.Builder
	results, err := newTestClient(ts.URL).Fetch(context.Background(), "os", &progress)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if got := results.ParseErrorCount(); got != 1 {
		t.Fatalf("ParseErrorCount() = %d, want 1", got)
	}
	bad := results.Matches[1].File
	if bad.ParseError == "" {
		t.Error("broken file should record a parse error")
	}
	if bad.Dependencies == nil || len(bad.Dependencies) != 0 {
		t.Errorf("broken file dependencies = %v, want empty", bad.Dependencies)
	}
	if !strings.Contains(progress.String(), "could not be analyzed") {
		t.Errorf("progress output missing parse warning: %q", progress.String())
	}
}

func TestFetchGraphQLError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"invalid query"},{"message":"try again"}]}`)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Fetch(context.Background(), "nltk", io.Discard)
	if err == nil {
		t.Fatal("Fetch() should fail on GraphQL errors")
	}
	if !strings.Contains(err.Error(), "invalid query; try again") {
		t.Errorf("error = %v, want joined GraphQL messages", err)
	}
}

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Fetch(context.Background(), "nltk", io.Discard)
	if err == nil {
		t.Fatal("Fetch() should fail on HTTP 401")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want HTTP status", err)
	}
}

func TestFetchEmptyModule(t *testing.T) {
	if _, err := newTestClient("http://invalid").Fetch(context.Background(), "", io.Discard); err == nil {
		t.Fatal("Fetch() should reject an empty module name")
	}
}

func TestFetchMergesLanguages(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		query := req.Variables["query"]
		queries = append(queries, query)
		if strings.Contains(query, "Jupyter") {
			nb := `{"nbformat": 4, "cells": [{"cell_type": "code", "source": ["import numpy\n", "numpy.zeros(3)\n"]}]}`
			fmt.Fprint(w, searchResponse(nb))
			return
		}
		fmt.Fprint(w, searchResponse("import numpy\nnumpy.ones(3)\n"))
	}))
	defer ts.Close()

	client := NewClient(types.SearchConfig{Endpoint: ts.URL})
	results, err := client.Fetch(context.Background(), "numpy", io.Discard)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("expected one query per language, got %d", len(queries))
	}
	if len(results.Matches) != 2 {
		t.Fatalf("len(Matches) = %d, want 2", len(results.Matches))
	}
	if got := results.Matches[0].File.Dependencies; !reflect.DeepEqual(got, []string{"numpy.ones"}) {
		t.Errorf("python dependencies = %v", got)
	}
	if got := results.Matches[1].File.Dependencies; !reflect.DeepEqual(got, []string{"numpy.zeros"}) {
		t.Errorf("notebook dependencies = %v", got)
	}
	if results.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", results.MatchCount)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(types.SearchConfig{})
	defaults := types.DefaultConfig().Search
	if c.cfg.Endpoint != defaults.Endpoint {
		t.Errorf("Endpoint = %q, want %q", c.cfg.Endpoint, defaults.Endpoint)
	}
	if c.cfg.Count != defaults.Count {
		t.Errorf("Count = %q, want %q", c.cfg.Count, defaults.Count)
	}
	if !reflect.DeepEqual(c.cfg.Languages, Languages) {
		t.Errorf("Languages = %v, want %v", c.cfg.Languages, Languages)
	}
}
