// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sourcegraph

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxSearchTimeout is the longest server-side timeout the API accepts.
const maxSearchTimeout = time.Minute

// languageConfig describes how to search and parse one language.
type languageConfig struct {
	// name is the Sourcegraph language filter value.
	name string

	// baseImportPattern matches an import of a top-level module. The
	// pattern is a Sourcegraph regexp literal, quotes included. Used when
	// the module name has no dots; "nltk.tokenize" may be imported as
	// "from nltk import tokenize", which this pattern would miss.
	baseImportPattern string

	// subpackageImportPattern matches any mention of a dotted module name.
	subpackageImportPattern string
}

// Languages lists the supported languages in fetch order.
var Languages = []string{"Python", "Jupyter Notebook"}

var languageConfigs = map[string]languageConfig{
	"Python": {
		name:                    "Python",
		baseImportPattern:       `"^\\s*(import|from) +%s[\\s\\.,$]"`,
		subpackageImportPattern: `"%s[\\s\\.,$]"`,
	},
	// Notebook sources are JSON, so the import line starts with a quote
	// rather than at column zero.
	"Jupyter Notebook": {
		name:                    "Jupyter Notebook",
		baseImportPattern:       `"\"\\s*(import|from) +%s[\\s\\.,$]"`,
		subpackageImportPattern: `"%s[\\s\\.,$]"`,
	},
}

// buildSearchQuery assembles the Sourcegraph search string for one language,
// e.g.:
//
//	context:global count:all timeout:10s patterntype:regexp
//	language:"Python" content:"^\\s*(import|from) +nltk[\\s\\.,$]"
//	-file:site-packages/nltk/
//
// The -file filter excludes vendored copies of the module itself, whose
// internal imports would drown out real usage.
func buildSearchQuery(module, language, count, timeout string) (string, error) {
	cfg, ok := languageConfigs[language]
	if !ok {
		return "", fmt.Errorf("unsupported language %q", language)
	}

	count, err := normalizeCount(count)
	if err != nil {
		return "", err
	}
	timeout, err = normalizeTimeout(timeout)
	if err != nil {
		return "", err
	}

	pattern := cfg.baseImportPattern
	if strings.Contains(module, ".") {
		pattern = cfg.subpackageImportPattern
	}

	head := strings.SplitN(module, ".", 2)[0]

	parts := []string{
		"context:global",
		"count:" + count,
		"timeout:" + timeout,
		"patterntype:regexp",
		fmt.Sprintf("language:%q", cfg.name),
		"content:" + fmt.Sprintf(pattern, module),
		fmt.Sprintf("-file:site-packages/%s/", head),
	}
	return strings.Join(parts, " "), nil
}

// normalizeCount validates a count value: a positive integer or "all".
func normalizeCount(count string) (string, error) {
	if count == "" || count == "all" {
		return "all", nil
	}
	n, err := strconv.Atoi(count)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid count %q: expected a positive integer or %q", count, "all")
	}
	return strconv.Itoa(n), nil
}

// normalizeTimeout validates a server-side timeout: a Go duration string or
// integer milliseconds, at most one minute.
func normalizeTimeout(timeout string) (string, error) {
	if timeout == "" {
		return "10s", nil
	}
	if ms, err := strconv.Atoi(timeout); err == nil {
		timeout = fmt.Sprintf("%dms", ms)
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return "", fmt.Errorf("invalid timeout %q: %w", timeout, err)
	}
	if d <= 0 || d > maxSearchTimeout {
		return "", fmt.Errorf("timeout %q out of range (0, 1m]", timeout)
	}
	return timeout, nil
}
