// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sourcegraph

import (
	"strings"
)

// Results is the merged search result envelope. Fetching several languages
// produces one Results per language; Merge folds them together by summing
// counters and concatenating lists.
type Results struct {
	Alert               string      `json:"alert,omitempty" yaml:"alert,omitempty"`
	Cloning             []RepoRef   `json:"cloning,omitempty" yaml:"cloning,omitempty"`
	ElapsedMilliseconds int         `json:"elapsed_milliseconds" yaml:"elapsed_milliseconds"`
	LimitHit            bool        `json:"limit_hit" yaml:"limit_hit"`
	MatchCount          int         `json:"match_count" yaml:"match_count"`
	Missing             []RepoRef   `json:"missing,omitempty" yaml:"missing,omitempty"`
	RepositoriesCount   int         `json:"repositories_count" yaml:"repositories_count"`
	Timedout            []RepoRef   `json:"timedout,omitempty" yaml:"timedout,omitempty"`
	Matches             []FileMatch `json:"matches" yaml:"matches"`
}

// RepoRef names a repository in the cloning/missing/timedout lists.
type RepoRef struct {
	Name string `json:"name" yaml:"name"`
}

// FileMatch pairs a matched file with its repository.
type FileMatch struct {
	Repository Repository `json:"repository" yaml:"repository"`
	File       File       `json:"file" yaml:"file"`
}

// Repository holds the metadata the search API returns per repository.
type Repository struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Stars       int    `json:"stars" yaml:"stars"`
	IsFork      bool   `json:"isFork" yaml:"is_fork"`
}

// File holds one matched file. Content is populated by the API and dropped
// after dependency extraction; Dependencies and ParseError replace it.
type File struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	URL     string `json:"url" yaml:"url"`
	Content string `json:"content,omitempty" yaml:"-"`

	// Language records which language fetch produced this match.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Dependencies are the fully-qualified uses of the queried module
	// extracted from Content.
	Dependencies []string `json:"dependencies" yaml:"dependencies"`

	// ParseError is set when Content could not be analyzed; the file then
	// contributes no dependencies.
	ParseError string `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
}

// Merge folds other into r: counters are summed, flags OR-ed, and lists
// concatenated, mirroring how per-language API responses are combined.
func (r *Results) Merge(other Results) {
	if r.Alert == "" {
		r.Alert = other.Alert
	} else if other.Alert != "" {
		r.Alert = r.Alert + "; " + other.Alert
	}
	r.Cloning = append(r.Cloning, other.Cloning...)
	r.ElapsedMilliseconds += other.ElapsedMilliseconds
	r.LimitHit = r.LimitHit || other.LimitHit
	r.MatchCount += other.MatchCount
	r.Missing = append(r.Missing, other.Missing...)
	r.RepositoriesCount += other.RepositoriesCount
	r.Timedout = append(r.Timedout, other.Timedout...)
	r.Matches = append(r.Matches, other.Matches...)
}

// ParseErrorCount returns the number of files that failed analysis.
func (r *Results) ParseErrorCount() int {
	n := 0
	for _, m := range r.Matches {
		if m.File.ParseError != "" {
			n++
		}
	}
	return n
}

// graphqlRequest is the POST body sent to the API.
type graphqlRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

// graphqlResponse mirrors the slice of the GraphQL schema we consume.
type graphqlResponse struct {
	Data struct {
		Search struct {
			Results searchResults `json:"results"`
		} `json:"search"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

func (e graphqlError) Error() string { return e.Message }

func joinGraphqlErrors(errs []graphqlError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// searchResults is the wire shape of the search result envelope.
type searchResults struct {
	Alert *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"alert"`
	Cloning             []RepoRef   `json:"cloning"`
	ElapsedMilliseconds int         `json:"elapsedMilliseconds"`
	LimitHit            bool        `json:"limitHit"`
	MatchCount          int         `json:"matchCount"`
	Missing             []RepoRef   `json:"missing"`
	RepositoriesCount   int         `json:"repositoriesCount"`
	Timedout            []RepoRef   `json:"timedout"`
	Results             []FileMatch `json:"results"`
}

// toResults converts the wire shape into the exported envelope.
func (sr searchResults) toResults() Results {
	r := Results{
		Cloning:             sr.Cloning,
		ElapsedMilliseconds: sr.ElapsedMilliseconds,
		LimitHit:            sr.LimitHit,
		MatchCount:          sr.MatchCount,
		Missing:             sr.Missing,
		RepositoriesCount:   sr.RepositoriesCount,
		Timedout:            sr.Timedout,
		Matches:             sr.Results,
	}
	if sr.Alert != nil {
		r.Alert = strings.TrimSpace(sr.Alert.Title + " " + sr.Alert.Description)
	}
	return r
}
