// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pysrc

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Folder holds the analyses of every Python file under a directory.
type Folder struct {
	files map[string]*Source
	// errs records files that failed to parse, keyed by path.
	errs map[string]error
}

// FromFolder recursively analyzes every .py file under path. Files that do
// not parse are skipped and recorded; they can be inspected via Errors.
func FromFolder(path string) (*Folder, error) {
	f := &Folder{
		files: make(map[string]*Source),
		errs:  make(map[string]error),
	}

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".py") {
			return nil
		}
		src, err := FromFile(p)
		if err != nil {
			f.errs[p] = err
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", p, err)
			return nil
		}
		f.files[p] = src
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}

	return f, nil
}

// Files returns the analyzed file paths in sorted order.
func (f *Folder) Files() []string {
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Errors returns the files that failed to parse, keyed by path.
func (f *Folder) Errors() map[string]error {
	return f.errs
}

// ImportsByFile maps each file path to its sorted imports.
func (f *Folder) ImportsByFile() map[string][]string {
	out := make(map[string][]string, len(f.files))
	for p, src := range f.files {
		out[p] = src.Imports()
	}
	return out
}

// Imports returns the sorted union of imports across all files.
func (f *Folder) Imports() []string {
	seen := make(map[string]bool)
	for _, src := range f.files {
		for _, name := range src.Imports() {
			seen[name] = true
		}
	}
	return sortedKeys(seen)
}

// DependenciesByFile maps each file path to its sorted dependencies on the
// given modules.
func (f *Folder) DependenciesByFile(modules ...string) map[string][]string {
	out := make(map[string][]string, len(f.files))
	for p, src := range f.files {
		out[p] = src.Dependencies(modules...)
	}
	return out
}

// Dependencies returns the sorted union of dependencies across all files.
func (f *Folder) Dependencies(modules ...string) []string {
	seen := make(map[string]bool)
	for _, src := range f.files {
		for _, name := range src.Dependencies(modules...) {
			seen[name] = true
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
