// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pysrc maps Python source code to the modules it imports and the
// fully-qualified names it uses. It parses source with tree-sitter and
// resolves aliasing ("import numpy as np"), from-imports ("from nltk import
// word_tokenize"), and relative imports into dotted names, so that
//
//	from x import y as z
//	z.a.b()
//
// reports a dependency on "x.y.a.b".
package pysrc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// MaxSourceSize is the largest source the analyzer will accept. Files
// fetched from code search occasionally contain multi-megabyte generated
// blobs that are not worth parsing.
const MaxSourceSize = 10 * 1024 * 1024

var (
	// ErrSyntax is returned when the source does not parse cleanly.
	ErrSyntax = errors.New("source contains syntax errors")

	// ErrTooDeep is returned when the syntax tree nests beyond the walk limit.
	ErrTooDeep = errors.New("syntax tree too deep")

	// ErrSourceTooLarge is returned for sources exceeding MaxSourceSize.
	ErrSourceTooLarge = errors.New("source exceeds size limit")

	// ErrInvalidSource is returned for content that is not valid UTF-8.
	ErrInvalidSource = errors.New("source is not valid UTF-8")
)

// Analyzer is the common surface of Source and Folder.
type Analyzer interface {
	// Imports returns the sorted modules imported from.
	Imports() []string

	// Dependencies returns the sorted fully-qualified uses of names
	// originating from the given modules (all imported modules when none
	// are given).
	Dependencies(modules ...string) []string
}

// Source holds the analysis of a single Python source unit.
type Source struct {
	a *analysis
}

// FromString analyzes a string of Python source code.
func FromString(src string) (*Source, error) {
	content := []byte(src)
	if len(content) > MaxSourceSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSourceTooLarge, len(content))
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidSource
	}

	tree, err := parseTree(content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, ErrSyntax
	}

	a, err := analyze(root, content)
	if err != nil {
		return nil, err
	}
	return &Source{a: a}, nil
}

// FromBase64 analyzes base64-encoded Python source code, the encoding the
// Sourcegraph API uses for file contents in some result shapes.
func FromBase64(encoded string) (*Source, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 source: %w", err)
	}
	return FromString(string(decoded))
}

// FromFile analyzes a Python file on disk. Files ending in .ipynb are
// treated as Jupyter notebooks.
func FromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	if strings.HasSuffix(path, ".ipynb") {
		return FromNotebook(data)
	}
	return FromString(string(data))
}

// Imports returns the sorted modules this source imports from.
func (s *Source) Imports() []string {
	return s.a.moduleList()
}

// Dependencies returns the sorted fully-qualified uses originating from the
// given modules. With no arguments, uses from every imported module are
// returned. Modules that the source never imports contribute nothing.
func (s *Source) Dependencies(modules ...string) []string {
	return s.a.useList(tokenizeAll(modules))
}

// HasWildcardImport reports whether the source contains a "from x import *"
// statement, whose bindings cannot be resolved statically.
func (s *Source) HasWildcardImport() bool {
	return s.a.wildcard
}

// Detect analyzes input by guessing its flavor: an existing directory is
// analyzed recursively, an existing file is read from disk (notebooks by
// extension), a string that decodes as base64 is decoded first, and
// anything else is treated as raw source code.
func Detect(input string) (Analyzer, error) {
	if info, err := os.Stat(input); err == nil {
		if info.IsDir() {
			return FromFolder(input)
		}
		return FromFile(input)
	}

	if decoded, err := base64.StdEncoding.DecodeString(input); err == nil {
		if src, err := FromString(string(decoded)); err == nil {
			return src, nil
		}
	}

	return FromString(input)
}

// parseTree runs the tree-sitter Python parser over content. A fresh parser
// is created per call so Source values can be built concurrently.
func parseTree(content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	return tree, nil
}

func tokenizeAll(modules []string) []Variable {
	if modules == nil {
		return nil
	}
	out := make([]Variable, 0, len(modules))
	for _, m := range modules {
		out = append(out, Tokenize(m))
	}
	return out
}
