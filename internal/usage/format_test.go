// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usage

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTable(t *testing.T) {
	r := fixtureResults()
	var b strings.Builder
	FormatTable(Count(r), r, &b)
	out := b.String()

	for _, want := range []string{
		"Dependency",
		"Occurrences",
		"nltk.download",
		"nltk.tokenize.word_tokenize",
		"3 dependencies across 3 files in 2 projects",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}

	// Highest count first.
	if strings.Index(out, "nltk.download") > strings.Index(out, "nltk.corpus.stopwords") {
		t.Errorf("entries not sorted by count:\n%s", out)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var b strings.Builder
	FormatTable(nil, fixtureResults(), &b)
	if !strings.Contains(b.String(), "No dependencies found.") {
		t.Errorf("empty table output = %q", b.String())
	}
}

func TestFormatTableParseErrors(t *testing.T) {
	r := fixtureResults()
	r.Matches[2].File.ParseError = "syntax error"
	var b strings.Builder
	FormatTable(Count(r), r, &b)
	if !strings.Contains(b.String(), "1 file(s) could not be analyzed") {
		t.Errorf("table output missing parse-error line:\n%s", b.String())
	}
}

func TestFormatNested(t *testing.T) {
	var b strings.Builder
	FormatNested(Nested(fixtureResults()), &b)
	out := b.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if lines[0] != "nltk (6)" {
		t.Errorf("first line = %q, want %q", lines[0], "nltk (6)")
	}
	if lines[1] != "  download (3)" {
		t.Errorf("second line = %q, want %q", lines[1], "  download (3)")
	}
	if !strings.Contains(out, "    word_tokenize (2)") {
		t.Errorf("nested output missing indented leaf:\n%s", out)
	}
}

func TestFormatProjects(t *testing.T) {
	var b strings.Builder
	FormatProjects(Projects(fixtureResults()), &b)
	out := b.String()

	for _, want := range []string{
		"github.com/b/classifier (200 stars, fork)",
		"github.com/a/tokenizer (10 stars) — text tools",
		"  src/tok.py (3 dependencies)",
		"2 projects",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("projects output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	var b strings.Builder
	if err := FormatJSON(Count(fixtureResults()), &b); err != nil {
		t.Fatalf("FormatJSON() error: %v", err)
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(b.String()), &entries); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(entries) != 3 || entries[0].Name != "nltk.download" {
		t.Errorf("round-tripped entries = %v", entries)
	}
}

func TestFormatYAML(t *testing.T) {
	var b strings.Builder
	if err := FormatYAML(Count(fixtureResults()), &b); err != nil {
		t.Fatalf("FormatYAML() error: %v", err)
	}
	if !strings.Contains(b.String(), "name: nltk.download") {
		t.Errorf("yaml output = %q", b.String())
	}
}
