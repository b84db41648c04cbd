// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/depscope/internal/sourcegraph"
	"github.com/pdiddy/depscope/pkg/types"
)

func newTestStore(t *testing.T, maxAge time.Duration) *Store {
	t.Helper()
	s, err := NewStore(types.CacheConfig{Dir: t.TempDir(), MaxAge: maxAge})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResults() *sourcegraph.Results {
	return &sourcegraph.Results{
		MatchCount:        2,
		RepositoriesCount: 2,
		Matches: []sourcegraph.FileMatch{
			{
				Repository: sourcegraph.Repository{Name: "github.com/a/one", Stars: 5, Description: "first"},
				File: sourcegraph.File{
					Name:         "a.py",
					Path:         "src/a.py",
					URL:          "/a/one/-/blob/src/a.py",
					Language:     "Python",
					Dependencies: []string{"nltk.download", "nltk.tokenize.word_tokenize"},
				},
			},
			{
				Repository: sourcegraph.Repository{Name: "github.com/b/two", IsFork: true},
				File: sourcegraph.File{
					Name:         "b.py",
					Path:         "b.py",
					Language:     "Python",
					Dependencies: []string{},
					ParseError:   "syntax error",
				},
			},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))

	got, err := s.Get(ctx, "nltk")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, 2, got.MatchCount)
	assert.Equal(t, 2, got.RepositoriesCount)
	require.Len(t, got.Matches, 2)

	first := got.Matches[0]
	assert.Equal(t, "github.com/a/one", first.Repository.Name)
	assert.Equal(t, 5, first.Repository.Stars)
	assert.Equal(t, []string{"nltk.download", "nltk.tokenize.word_tokenize"}, first.File.Dependencies)
	assert.Equal(t, "Python", first.File.Language)

	second := got.Matches[1]
	assert.True(t, second.Repository.IsFork)
	assert.Equal(t, "syntax error", second.File.ParseError)
	assert.Empty(t, second.File.Dependencies)
}

func TestGetMiss(t *testing.T) {
	s := newTestStore(t, time.Hour)
	got, err := s.Get(context.Background(), "numpy")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetExpired(t *testing.T) {
	s := newTestStore(t, 1*time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))
	time.Sleep(10 * time.Millisecond)

	got, err := s.Get(ctx, "nltk")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry should be a miss")
}

func TestPutReplacesPreviousEntry(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))
	require.NoError(t, s.Put(ctx, "nltk", &sourcegraph.Results{
		MatchCount: 1,
		Matches: []sourcegraph.FileMatch{
			{
				Repository: sourcegraph.Repository{Name: "github.com/c/three"},
				File:       sourcegraph.File{Path: "c.py", Dependencies: []string{"nltk.data.load"}},
			},
		},
	}))

	got, err := s.Get(ctx, "nltk")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, "github.com/c/three", got.Matches[0].Repository.Name)
}

func TestPutEmptyModule(t *testing.T) {
	s := newTestStore(t, time.Hour)
	assert.Error(t, s.Put(context.Background(), "", sampleResults()))
}

func TestList(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))
	require.NoError(t, s.Put(ctx, "numpy", &sourcegraph.Results{}))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byModule := make(map[string]CacheEntry)
	for _, e := range entries {
		byModule[e.Module] = e
	}
	assert.Equal(t, 2, byModule["nltk"].Files)
	assert.Equal(t, 0, byModule["numpy"].Files)
	assert.False(t, byModule["nltk"].Expired)
	assert.False(t, byModule["nltk"].FetchedAt.IsZero())
}

func TestClearModule(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))
	require.NoError(t, s.Put(ctx, "numpy", &sourcegraph.Results{}))

	n, err := s.Clear(ctx, "nltk")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "nltk")
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))
	require.NoError(t, s.Put(ctx, "numpy", &sourcegraph.Results{}))

	n, err := s.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	cfg := types.CacheConfig{Dir: dir, MaxAge: time.Hour}
	ctx := context.Background()

	s, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "nltk", sampleResults()))
	require.NoError(t, s.Close())

	s2, err := NewStore(cfg)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "nltk")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Matches, 2)
}
