// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store caches fetched search results in a local SQLite database
// so repeated queries for the same module skip the network.
// See docs/ARCHITECTURE § Fetch Cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/depscope/internal/sourcegraph"
	"github.com/pdiddy/depscope/pkg/types"
)

const dbFile = "cache.db"

// Store manages the fetch cache SQLite database.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
}

// NewStore opens or creates the cache database at cfg.Dir/cache.db and
// creates the schema if it does not exist. Entries older than cfg.MaxAge
// are treated as misses.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = types.DefaultConfig().Cache.MaxAge
	}

	s := &Store{db: db, maxAge: maxAge}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			module TEXT PRIMARY KEY,
			fetched_at TEXT NOT NULL,
			alert TEXT,
			elapsed_ms INTEGER,
			limit_hit INTEGER,
			match_count INTEGER,
			repositories_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			module TEXT NOT NULL REFERENCES fetches(module) ON DELETE CASCADE,
			repo_name TEXT NOT NULL,
			repo_description TEXT,
			repo_stars INTEGER,
			repo_is_fork INTEGER,
			file_name TEXT,
			file_path TEXT,
			file_url TEXT,
			language TEXT,
			dependencies TEXT NOT NULL,
			parse_error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_module ON files(module)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put stores the fetch results for module, replacing any previous entry.
func (s *Store) Put(ctx context.Context, module string, results *sourcegraph.Results) error {
	if module == "" {
		return fmt.Errorf("module name is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fetches WHERE module = ?`, module); err != nil {
		return fmt.Errorf("deleting old entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fetches (module, fetched_at, alert, elapsed_ms, limit_hit, match_count, repositories_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		module, time.Now().UTC().Format(time.RFC3339Nano),
		results.Alert, results.ElapsedMilliseconds, results.LimitHit,
		results.MatchCount, results.RepositoriesCount,
	)
	if err != nil {
		return fmt.Errorf("inserting fetch entry: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (module, repo_name, repo_description, repo_stars, repo_is_fork,
			file_name, file_path, file_url, language, dependencies, parse_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range results.Matches {
		depsJSON, err := json.Marshal(m.File.Dependencies)
		if err != nil {
			return fmt.Errorf("encoding dependencies for %s: %w", m.File.Path, err)
		}
		_, err = stmt.ExecContext(ctx,
			module, m.Repository.Name, m.Repository.Description, m.Repository.Stars, m.Repository.IsFork,
			m.File.Name, m.File.Path, m.File.URL, m.File.Language, string(depsJSON), m.File.ParseError,
		)
		if err != nil {
			return fmt.Errorf("inserting file %s: %w", m.File.Path, err)
		}
	}

	return tx.Commit()
}

// Get returns the cached results for module, or nil if the module is not
// cached or the entry is older than the store's maximum age.
func (s *Store) Get(ctx context.Context, module string) (*sourcegraph.Results, error) {
	var fetchedAt string
	results := &sourcegraph.Results{}
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, alert, elapsed_ms, limit_hit, match_count, repositories_count
		 FROM fetches WHERE module = ?`, module,
	).Scan(&fetchedAt, &results.Alert, &results.ElapsedMilliseconds,
		&results.LimitHit, &results.MatchCount, &results.RepositoriesCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fetch entry: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetch timestamp %q: %w", fetchedAt, err)
	}
	if time.Since(t) > s.maxAge {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT repo_name, repo_description, repo_stars, repo_is_fork,
			file_name, file_path, file_url, language, dependencies, parse_error
		 FROM files WHERE module = ? ORDER BY rowid`, module)
	if err != nil {
		return nil, fmt.Errorf("reading cached files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m sourcegraph.FileMatch
		var depsJSON string
		err := rows.Scan(&m.Repository.Name, &m.Repository.Description,
			&m.Repository.Stars, &m.Repository.IsFork,
			&m.File.Name, &m.File.Path, &m.File.URL, &m.File.Language,
			&depsJSON, &m.File.ParseError)
		if err != nil {
			return nil, fmt.Errorf("scanning cached file: %w", err)
		}
		if err := json.Unmarshal([]byte(depsJSON), &m.File.Dependencies); err != nil {
			return nil, fmt.Errorf("decoding dependencies for %s: %w", m.File.Path, err)
		}
		results.Matches = append(results.Matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cached files: %w", err)
	}

	return results, nil
}

// CacheEntry summarizes one cached fetch for listing.
type CacheEntry struct {
	Module    string
	FetchedAt time.Time
	Files     int
	Expired   bool
}

// List returns a summary of every cached fetch, newest first.
func (s *Store) List(ctx context.Context) ([]CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.module, f.fetched_at, count(fi.rowid)
		 FROM fetches f LEFT JOIN files fi ON fi.module = f.module
		 GROUP BY f.module ORDER BY f.fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing cache entries: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		var fetchedAt string
		if err := rows.Scan(&e.Module, &fetchedAt, &e.Files); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing fetch timestamp %q: %w", fetchedAt, err)
		}
		e.FetchedAt = t
		e.Expired = time.Since(t) > s.maxAge
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes the cached fetch for module, or every entry when module
// is empty. It returns the number of fetches removed.
func (s *Store) Clear(ctx context.Context, module string) (int, error) {
	query, args := `DELETE FROM fetches`, []any{}
	if module != "" {
		query, args = `DELETE FROM fetches WHERE module = ?`, []any{module}
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared entries: %w", err)
	}
	return int(n), nil
}
