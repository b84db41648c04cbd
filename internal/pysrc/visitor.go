// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pysrc

import (
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// maxWalkDepth bounds the syntax-tree walk. Pathologically nested sources
// (machine-generated expression towers) are rejected rather than risking a
// stack overflow.
const maxWalkDepth = 800

// analysis is the per-file extraction state. One walk over the syntax tree
// fills four tables:
//
//   - importModules: modules imported from, e.g. {"itertools", "nltk.tokenize",
//     "numpy"} for "from itertools import chain", "from nltk.tokenize import
//     word_tokenize", "import numpy as np".
//   - importedNames: names bound by imports, e.g. {"chain", "word_tokenize", "np"}.
//   - aliases: alias to real name, e.g. "np" -> ["numpy"], and "z" -> ["y"]
//     for "from x import y as z".
//   - prefixes: imported name to source module, e.g. "word_tokenize" ->
//     ["nltk", "tokenize"].
//
// and one set of results:
//
//   - uses: fully-qualified variable chains seen in the body, with aliases
//     resolved and prefixes applied, e.g. "z.a.b()" after
//     "from x import y as z" yields ["x", "y", "a", "b"].
type analysis struct {
	importModules map[string]Variable
	importedNames map[string]Variable
	aliases       map[string]Variable
	prefixes      map[string]Variable
	uses          map[string]Variable

	wildcard bool // saw "from x import *"
	src      []byte
}

// analyze walks the tree rooted at root and returns the populated analysis.
func analyze(root *sitter.Node, src []byte) (*analysis, error) {
	a := &analysis{
		importModules: make(map[string]Variable),
		importedNames: make(map[string]Variable),
		aliases:       make(map[string]Variable),
		prefixes:      make(map[string]Variable),
		uses:          make(map[string]Variable),
		src:           src,
	}
	if err := a.walk(root, 0); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *analysis) walk(node *sitter.Node, depth int) error {
	if depth > maxWalkDepth {
		return fmt.Errorf("%w: nesting exceeds %d levels", ErrTooDeep, maxWalkDepth)
	}

	switch node.Type() {
	case "import_statement":
		a.visitImport(node)
		return nil
	case "import_from_statement":
		a.visitImportFrom(node)
		return nil
	case "identifier":
		if a.isUse(node) {
			a.recordUse(node)
		}
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if err := a.walk(node.Child(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// visitImport handles "import foo.bar" and "import foo as f" statements,
// including multi-target forms like "import a.b, c as d".
func (a *analysis) visitImport(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			name := Tokenize(child.Content(a.src))
			a.importModules[Detokenize(name)] = name
			a.importedNames[Detokenize(name)] = name
		case "aliased_import":
			name, alias := a.splitAliased(child)
			if len(name) == 0 {
				continue
			}
			a.importModules[Detokenize(name)] = name
			if alias != "" {
				a.aliases[alias] = name
				a.importedNames[alias] = Variable{alias}
			} else {
				a.importedNames[Detokenize(name)] = name
			}
		}
	}
}

// visitImportFrom handles "from x import y", "from x import y as z",
// "from . import sibling", and "from x import *".
func (a *analysis) visitImportFrom(node *sitter.Node) {
	var module Variable
	sawImport := false

	record := func(name Variable, alias string) {
		a.prefixes[name.Head()] = module
		if alias != "" {
			a.aliases[alias] = name
			a.importedNames[alias] = Variable{alias}
		} else {
			a.importedNames[Detokenize(name)] = name
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			module = a.relativeModule(child)
		case "dotted_name":
			if !sawImport {
				module = Tokenize(child.Content(a.src))
			} else {
				record(Tokenize(child.Content(a.src)), "")
			}
		case "identifier":
			if sawImport {
				record(Variable{child.Content(a.src)}, "")
			}
		case "aliased_import":
			name, alias := a.splitAliased(child)
			if len(name) > 0 {
				record(name, alias)
			}
		case "wildcard_import":
			a.wildcard = true
		}
	}

	if len(module) > 0 {
		a.importModules[Detokenize(module)] = module
	}
}

// relativeModule converts a relative_import node into module tokens. The
// import level (number of leading dots) becomes that many empty tokens, so
// "from .. import x" yields ["", ""] and "from .mongo import db" yields
// ["", "mongo"].
func (a *analysis) relativeModule(node *sitter.Node) Variable {
	var module Variable
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "import_prefix":
			for range child.Content(a.src) {
				module = append(module, "")
			}
		case "dotted_name":
			module = append(module, Tokenize(child.Content(a.src))...)
		}
	}
	return module
}

// splitAliased returns the real name and alias from an aliased_import node
// ("numpy as np" -> ["numpy"], "np").
func (a *analysis) splitAliased(node *sitter.Node) (Variable, string) {
	if name := node.ChildByFieldName("name"); name != nil {
		var alias string
		if al := node.ChildByFieldName("alias"); al != nil {
			alias = al.Content(a.src)
		}
		return Tokenize(name.Content(a.src)), alias
	}

	// Positional fallback: first dotted_name/identifier is the name, a
	// trailing identifier is the alias.
	var name Variable
	var alias string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			if len(name) == 0 {
				name = Tokenize(child.Content(a.src))
			}
		case "identifier":
			if len(name) == 0 {
				name = Variable{child.Content(a.src)}
			} else {
				alias = child.Content(a.src)
			}
		}
	}
	return name, alias
}

// isUse reports whether an identifier node is a value use rather than a
// binding position. Definition names, parameter names, keyword-argument
// names, global/nonlocal declarations, and the right-hand side of an
// attribute access are not uses. Annotations, decorators, assignment
// targets, and call arguments are.
func (a *analysis) isUse(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return true
	}

	switch parent.Type() {
	case "attribute":
		// Only the leftmost object starts a chain; the attribute side is
		// folded in by recordUse.
		return a.isFieldChild(parent, "object", node)
	case "keyword_argument":
		return !a.isFieldChild(parent, "name", node)
	case "function_definition", "class_definition":
		return !a.isFieldChild(parent, "name", node)
	case "parameters", "lambda_parameters", "typed_parameter":
		return false
	case "default_parameter", "typed_default_parameter":
		return !a.isFieldChild(parent, "name", node)
	case "global_statement", "nonlocal_statement":
		return false
	}
	return true
}

// isFieldChild reports whether node occupies the given field of parent.
// Nodes are compared by span since tree-sitter may hand out distinct
// wrappers for the same underlying node.
func (a *analysis) isFieldChild(parent *sitter.Node, field string, node *sitter.Node) bool {
	f := parent.ChildByFieldName(field)
	return f != nil && f.StartByte() == node.StartByte() && f.EndByte() == node.EndByte()
}

// recordUse resolves the full variable chain starting at an identifier and
// adds it to the uses set. The chain extends rightward through enclosing
// attribute accesses ("nltk.tokenize.word_tokenize" from the identifier
// "nltk") and stops at call or subscript boundaries, so "x.y().z" records
// only "x.y". The head token is then rewritten through aliases and the
// prefix of a from-import is prepended.
func (a *analysis) recordUse(node *sitter.Node) {
	variable := Variable{node.Content(a.src)}

	cur := node
	for {
		parent := cur.Parent()
		if parent == nil || parent.Type() != "attribute" || !a.isFieldChild(parent, "object", cur) {
			break
		}
		attr := parent.ChildByFieldName("attribute")
		if attr == nil {
			break
		}
		variable = append(variable, attr.Content(a.src))
		cur = parent
	}

	// "import numpy as np": np.array -> numpy.array
	if real, ok := a.aliases[variable.Head()]; ok {
		variable = append(append(Variable{}, real...), variable[1:]...)
	}

	// "from nltk import word_tokenize": word_tokenize -> nltk.word_tokenize
	if prefix, ok := a.prefixes[variable.Head()]; ok {
		variable = append(append(Variable{}, prefix...), variable...)
	}

	a.uses[Detokenize(variable)] = variable
}

// moduleList returns the importModules entries sorted by dotted name.
func (a *analysis) moduleList() []string {
	out := make([]string, 0, len(a.importModules))
	for name := range a.importModules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// useList returns the uses that originate from the given modules, sorted.
// Modules are matched by token prefix, and only modules that are themselves
// a prefix of some imported module participate: asking for "nltk" in a file
// that never imports nltk returns nothing. A nil filter means all imported
// modules.
func (a *analysis) useList(modules []Variable) []string {
	if modules == nil {
		modules = make([]Variable, 0, len(a.importModules))
		for _, m := range a.importModules {
			modules = append(modules, m)
		}
	} else {
		filtered := make([]Variable, 0, len(modules))
		for _, m := range modules {
			for _, imported := range a.importModules {
				if imported.HasPrefix(m) {
					filtered = append(filtered, m)
					break
				}
			}
		}
		modules = filtered
	}

	var out []string
	for name, use := range a.uses {
		for _, m := range modules {
			if use.HasPrefix(m) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
