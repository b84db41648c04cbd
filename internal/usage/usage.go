// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package usage aggregates extracted dependencies into frequency counts,
// nested segment trees, and per-project groupings.
// See docs/ARCHITECTURE § Aggregation.
package usage

import (
	"sort"
	"strings"

	"github.com/pdiddy/depscope/internal/sourcegraph"
)

// Entry is one dependency with its occurrence count.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Count tallies every extracted dependency across all matched files and
// returns entries sorted by descending count, ties broken lexically.
func Count(r *sourcegraph.Results) []Entry {
	counts := make(map[string]int)
	for _, m := range r.Matches {
		for _, dep := range m.File.Dependencies {
			counts[dep]++
		}
	}

	entries := make([]Entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, Entry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Node is one segment of a dotted dependency name. Count is cumulative:
// a use of "nltk.tokenize.word_tokenize" contributes to "nltk",
// "nltk.tokenize", and "nltk.tokenize.word_tokenize".
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Count    int     `json:"count" yaml:"count"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Nested arranges the dependency counts into a tree of dotted-name
// segments. The returned root has an empty name and holds the total
// occurrence count. Children are sorted by descending count, ties lexical.
func Nested(r *sourcegraph.Results) *Node {
	root := &Node{}
	for _, m := range r.Matches {
		for _, dep := range m.File.Dependencies {
			node := root
			node.Count++
			for _, segment := range strings.Split(dep, ".") {
				node = node.child(segment)
				node.Count++
			}
		}
	}
	root.sortRecursive()
	return root
}

func (n *Node) child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &Node{Name: name}
	n.Children = append(n.Children, c)
	return c
}

func (n *Node) sortRecursive() {
	sort.Slice(n.Children, func(i, j int) bool {
		if n.Children[i].Count != n.Children[j].Count {
			return n.Children[i].Count > n.Children[j].Count
		}
		return n.Children[i].Name < n.Children[j].Name
	})
	for _, c := range n.Children {
		c.sortRecursive()
	}
}

// Project groups the matched files of one repository.
type Project struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Stars       int           `json:"stars" yaml:"stars"`
	IsFork      bool          `json:"is_fork" yaml:"is_fork"`
	Files       []ProjectFile `json:"files" yaml:"files"`
}

// ProjectFile is one matched file within a project.
type ProjectFile struct {
	Path         string   `json:"path" yaml:"path"`
	URL          string   `json:"url,omitempty" yaml:"url,omitempty"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

// Projects groups matches by repository, sorted by descending star count,
// ties broken by name. File order within a project follows match order.
func Projects(r *sourcegraph.Results) []Project {
	index := make(map[string]int)
	var projects []Project
	for _, m := range r.Matches {
		i, ok := index[m.Repository.Name]
		if !ok {
			i = len(projects)
			index[m.Repository.Name] = i
			projects = append(projects, Project{
				Name:        m.Repository.Name,
				Description: m.Repository.Description,
				Stars:       m.Repository.Stars,
				IsFork:      m.Repository.IsFork,
			})
		}
		projects[i].Files = append(projects[i].Files, ProjectFile{
			Path:         m.File.Path,
			URL:          m.File.URL,
			Dependencies: m.File.Dependencies,
		})
	}
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Stars != projects[j].Stars {
			return projects[i].Stars > projects[j].Stars
		}
		return projects[i].Name < projects[j].Name
	})
	return projects
}

// FileCount returns the number of matched files.
func FileCount(r *sourcegraph.Results) int {
	return len(r.Matches)
}

// ProjectCount returns the number of distinct repositories.
func ProjectCount(r *sourcegraph.Results) int {
	seen := make(map[string]struct{})
	for _, m := range r.Matches {
		seen[m.Repository.Name] = struct{}{}
	}
	return len(seen)
}
