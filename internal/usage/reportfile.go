// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usage

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/depscope/internal/sourcegraph"
)

// Report is the on-disk representation of one fetch and its results. A
// report can be saved after a fetch and reloaded later without re-querying
// the search API.
type Report struct {
	Module  string              `yaml:"module"`
	Summary ReportSummary       `yaml:"summary"`
	Results sourcegraph.Results `yaml:"results"`
}

// ReportSummary stores result statistics and a timestamp.
type ReportSummary struct {
	Files       int       `yaml:"files"`
	Projects    int       `yaml:"projects"`
	ParseErrors int       `yaml:"parse_errors"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// WriteReport saves the fetch results for module to a YAML file.
func WriteReport(path, module string, results *sourcegraph.Results) error {
	report := Report{
		Module: module,
		Summary: ReportSummary{
			Files:       FileCount(results),
			Projects:    ProjectCount(results),
			ParseErrors: results.ParseErrorCount(),
			Timestamp:   time.Now(),
		},
		Results: *results,
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a previously saved report from disk.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	if report.Module == "" {
		return nil, fmt.Errorf("report %s has no module name", path)
	}
	return &report, nil
}
