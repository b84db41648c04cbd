// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pysrc

import "strings"

// Variable is a dotted name split into its tokens: "nltk.tokenize" becomes
// ["nltk", "tokenize"]. Relative imports encode their level as leading empty
// tokens, so "from .mongo import db" produces the module ["", "mongo"].
type Variable []string

// Tokenize splits a dotted name into a Variable.
func Tokenize(name string) Variable {
	return Variable(strings.Split(name, "."))
}

// Detokenize joins a Variable back into a dotted name.
func Detokenize(v Variable) string {
	return strings.Join(v, ".")
}

// HasPrefix reports whether v starts with the token sequence prefix.
func (v Variable) HasPrefix(prefix Variable) bool {
	if len(prefix) > len(v) {
		return false
	}
	for i, tok := range prefix {
		if v[i] != tok {
			return false
		}
	}
	return true
}

// Head returns the first token, or "" for an empty Variable.
func (v Variable) Head() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
