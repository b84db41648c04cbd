// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sourcegraph

import (
	"strings"
	"testing"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		module   string
		language string
		count    string
		timeout  string
		want     string
		wantErr  bool
	}{
		{
			name:     "python top-level module",
			module:   "nltk",
			language: "Python",
			count:    "all",
			timeout:  "10s",
			want: `context:global count:all timeout:10s patterntype:regexp ` +
				`language:"Python" content:"^\\s*(import|from) +nltk[\\s\\.,$]" ` +
				`-file:site-packages/nltk/`,
		},
		{
			name:     "python dotted module uses subpackage pattern",
			module:   "nltk.tokenize",
			language: "Python",
			count:    "all",
			timeout:  "10s",
			want: `context:global count:all timeout:10s patterntype:regexp ` +
				`language:"Python" content:"nltk.tokenize[\\s\\.,$]" ` +
				`-file:site-packages/nltk/`,
		},
		{
			name:     "jupyter pattern starts with a quote",
			module:   "pandas",
			language: "Jupyter Notebook",
			count:    "100",
			timeout:  "30s",
			want: `context:global count:100 timeout:30s patterntype:regexp ` +
				`language:"Jupyter Notebook" content:"\"\\s*(import|from) +pandas[\\s\\.,$]" ` +
				`-file:site-packages/pandas/`,
		},
		{
			name:     "empty count defaults to all",
			module:   "os",
			language: "Python",
			count:    "",
			timeout:  "10s",
			want: `context:global count:all timeout:10s patterntype:regexp ` +
				`language:"Python" content:"^\\s*(import|from) +os[\\s\\.,$]" ` +
				`-file:site-packages/os/`,
		},
		{
			name:     "integer timeout treated as milliseconds",
			module:   "os",
			language: "Python",
			count:    "all",
			timeout:  "5000",
			want: `context:global count:all timeout:5000ms patterntype:regexp ` +
				`language:"Python" content:"^\\s*(import|from) +os[\\s\\.,$]" ` +
				`-file:site-packages/os/`,
		},
		{
			name:     "unsupported language",
			module:   "os",
			language: "Rust",
			count:    "all",
			timeout:  "10s",
			wantErr:  true,
		},
		{
			name:     "negative count",
			module:   "os",
			language: "Python",
			count:    "-5",
			timeout:  "10s",
			wantErr:  true,
		},
		{
			name:     "timeout over one minute",
			module:   "os",
			language: "Python",
			count:    "all",
			timeout:  "2m",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildSearchQuery(tt.module, tt.language, tt.count, tt.timeout)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("buildSearchQuery() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSearchQuery() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("buildSearchQuery()\n got: %s\nwant: %s", got, tt.want)
			}
		})
	}
}

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "all"},
		{in: "all", want: "all"},
		{in: "1", want: "1"},
		{in: "2500", want: "2500"},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "many", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeCount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeCount(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeCount(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeCount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "10s"},
		{in: "30s", want: "30s"},
		{in: "1m", want: "1m"},
		{in: "500", want: "500ms"},
		{in: "90s", wantErr: true},
		{in: "0s", wantErr: true},
		{in: "-3s", wantErr: true},
		{in: "soon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeTimeout(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeTimeout(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeTimeout(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeTimeout(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLanguagesHaveConfigs(t *testing.T) {
	for _, language := range Languages {
		if _, ok := languageConfigs[language]; !ok {
			t.Errorf("language %q has no search configuration", language)
		}
	}
	if !strings.Contains(languageConfigs["Python"].baseImportPattern, "import|from") {
		t.Error("Python base pattern should match import and from statements")
	}
}
