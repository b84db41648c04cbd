// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pysrc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotNotebook is returned when data is not a Jupyter notebook of a
// supported version (2, 3, or 4).
var ErrNotNotebook = errors.New("not a supported Jupyter notebook")

// cellMagics are the cell-level magics that switch a cell away from Python.
// Cells starting with one of these are dropped entirely.
var cellMagics = []string{
	"%%bash", "%%html", "%%javascript", "%%js", "%%latex", "%%markdown",
	"%%perl", "%%ruby", "%%script", "%%sh", "%%svg",
}

type notebook struct {
	NBFormat   int                 `json:"nbformat"`
	Cells      []notebookCell      `json:"cells"`
	Worksheets []notebookWorksheet `json:"worksheets"`
}

type notebookWorksheet struct {
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string   `json:"cell_type"`
	Source   []string `json:"source"`
	Input    []string `json:"input"`
}

// FromNotebook analyzes the code cells of a Jupyter notebook. Line magics
// ("%matplotlib inline") and shell escapes ("!pip install nltk") are
// stripped, cells led by a non-Python cell magic are dropped, and cells
// that do not parse on their own (Python 2 relics, half-typed code) are
// discarded. The surviving cells are joined and analyzed as one unit.
func FromNotebook(data []byte) (*Source, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotNotebook, err)
	}

	var cells []string
	switch nb.NBFormat {
	case 4:
		for _, cell := range nb.Cells {
			if text, ok := cellText(cell.CellType, cell.Source, ""); ok {
				cells = append(cells, text)
			}
		}
	case 2, 3:
		// v3 stores each line with its trailing newline, v2 without.
		sep := ""
		if nb.NBFormat == 2 {
			sep = "\n"
		}
		for _, ws := range nb.Worksheets {
			for _, cell := range ws.Cells {
				if text, ok := cellText(cell.CellType, cell.Input, sep); ok {
					cells = append(cells, text)
				}
			}
		}
	default:
		return nil, fmt.Errorf("%w: nbformat %d", ErrNotNotebook, nb.NBFormat)
	}

	var valid []string
	for _, cell := range cells {
		if cellParses(cell) {
			valid = append(valid, cell)
		}
	}

	return FromString(strings.Join(valid, "\n"))
}

// cellText assembles a code cell's text, or reports false if the cell is
// not Python code. Magic and shell-escape lines are skipped.
func cellText(cellType string, lines []string, sep string) (string, bool) {
	if cellType != "code" || len(lines) == 0 {
		return "", false
	}
	for _, magic := range cellMagics {
		if strings.HasPrefix(lines[0], magic) {
			return "", false
		}
	}

	var kept []string
	for _, line := range lines {
		if strings.HasPrefix(line, "%") || strings.HasPrefix(line, "!") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, sep), true
}

// cellParses reports whether a cell is syntactically valid on its own.
func cellParses(cell string) bool {
	tree, err := parseTree([]byte(cell))
	if err != nil {
		return false
	}
	defer tree.Close()
	root := tree.RootNode()
	return root != nil && !root.HasError()
}
