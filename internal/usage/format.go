// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/depscope/internal/sourcegraph"
)

// FormatTable writes the frequency entries as a human-readable table,
// followed by a file/project summary line.
func FormatTable(entries []Entry, r *sourcegraph.Results, w io.Writer) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No dependencies found.")
		return
	}

	nameWidth := len("Dependency")
	for _, e := range entries {
		if len(e.Name) > nameWidth {
			nameWidth = len(e.Name)
		}
	}

	fmt.Fprintf(w, "%-*s  %s\n", nameWidth, "Dependency", "Occurrences")
	fmt.Fprintln(w, strings.Repeat("-", nameWidth+13))
	for _, e := range entries {
		fmt.Fprintf(w, "%-*s  %d\n", nameWidth, e.Name, e.Count)
	}

	fmt.Fprintf(w, "\n%d dependencies across %d files in %d projects\n",
		len(entries), FileCount(r), ProjectCount(r))
	if n := r.ParseErrorCount(); n > 0 {
		fmt.Fprintf(w, "%d file(s) could not be analyzed\n", n)
	}
}

// FormatNested writes the segment tree as an indented outline. The root's
// own line is omitted; top-level segments start at column zero.
func FormatNested(root *Node, w io.Writer) {
	if root == nil || len(root.Children) == 0 {
		fmt.Fprintln(w, "No dependencies found.")
		return
	}
	for _, c := range root.Children {
		writeNode(c, 0, w)
	}
}

func writeNode(n *Node, depth int, w io.Writer) {
	fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.Name, n.Count)
	for _, c := range n.Children {
		writeNode(c, depth+1, w)
	}
}

// FormatProjects writes the per-project grouping as a table of projects
// with their matched files.
func FormatProjects(projects []Project, w io.Writer) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}

	for _, p := range projects {
		fmt.Fprintf(w, "%s (%d stars", p.Name, p.Stars)
		if p.IsFork {
			fmt.Fprint(w, ", fork")
		}
		fmt.Fprint(w, ")")
		if p.Description != "" {
			fmt.Fprintf(w, " — %s", truncate(p.Description, 80))
		}
		fmt.Fprintln(w)
		for _, f := range p.Files {
			fmt.Fprintf(w, "  %s (%d dependencies)\n", f.Path, len(f.Dependencies))
		}
	}
	fmt.Fprintf(w, "\n%d projects\n", len(projects))
}

// FormatJSON writes v as indented JSON.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatYAML writes v as YAML.
func FormatYAML(v any, w io.Writer) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
