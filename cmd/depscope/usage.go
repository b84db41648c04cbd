// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depscope/internal/sourcegraph"
	"github.com/pdiddy/depscope/internal/store"
	"github.com/pdiddy/depscope/internal/usage"
	"github.com/pdiddy/depscope/pkg/types"
)

var usageCmd = &cobra.Command{
	Use:   "usage [module]",
	Short: "Report how open-source code uses a Python module",
	Long: `Usage fetches files importing the module from public code search,
extracts every fully-qualified use, and prints a sorted frequency table.

Fetches are cached locally; use --refresh to force a new fetch or
--no-cache to skip the cache entirely. A fetch can be saved to a YAML
report with --save and reloaded later with --load, without re-querying.`,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().String("count", "", `maximum matches to fetch per language: a number or "all"`)
	usageCmd.Flags().String("timeout", "", "server-side search timeout (e.g. 10s, 500ms)")
	usageCmd.Flags().StringSlice("languages", nil, "languages to fetch (Python, \"Jupyter Notebook\")")
	usageCmd.Flags().Int("top", 0, "show only the top N dependencies")
	usageCmd.Flags().Bool("nested", false, "render the usage counts as a nested segment tree")
	usageCmd.Flags().Bool("projects", false, "group matched files by repository")
	usageCmd.Flags().Bool("json", false, "output as JSON")
	usageCmd.Flags().Bool("yaml", false, "output as YAML")
	usageCmd.Flags().String("save", "", "save the fetch results to a YAML report file")
	usageCmd.Flags().String("load", "", "load results from a saved report instead of fetching")
	usageCmd.Flags().Bool("refresh", false, "ignore the cache and fetch fresh results")
	usageCmd.Flags().Bool("no-cache", false, "neither read nor write the fetch cache")

	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	loadPath, _ := cmd.Flags().GetString("load")
	if loadPath == "" && len(args) != 1 {
		return fmt.Errorf("expected a module name (or --load <report>)")
	}

	cfg := loadConfig()
	if v, _ := cmd.Flags().GetString("count"); v != "" {
		cfg.Search.Count = v
	}
	if v, _ := cmd.Flags().GetString("timeout"); v != "" {
		cfg.Search.SearchTimeout = v
	}
	if v, _ := cmd.Flags().GetStringSlice("languages"); len(v) > 0 {
		cfg.Search.Languages = v
	}

	ctx := context.Background()

	var module string
	var results *sourcegraph.Results
	if loadPath != "" {
		report, err := usage.ReadReport(loadPath)
		if err != nil {
			return err
		}
		module = report.Module
		results = &report.Results
	} else {
		module = args[0]
		var err error
		results, err = fetchResults(ctx, cmd, module, cfg)
		if err != nil {
			return err
		}
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := usage.WriteReport(savePath, module, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved report to %s\n", savePath)
	}

	return renderUsage(cmd, results)
}

// fetchResults returns cached results when fresh, fetching and caching
// otherwise. Cache failures degrade to a plain fetch with a warning.
func fetchResults(ctx context.Context, cmd *cobra.Command, module string, cfg types.Config) (*sourcegraph.Results, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	refresh, _ := cmd.Flags().GetBool("refresh")

	client := sourcegraph.NewClient(cfg.Search)
	if noCache {
		return client.Fetch(ctx, module, os.Stderr)
	}

	s, err := store.NewStore(cfg.Cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache unavailable: %v\n", err)
		return client.Fetch(ctx, module, os.Stderr)
	}
	defer s.Close()

	if !refresh {
		cached, err := s.Get(ctx, module)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache read failed: %v\n", err)
		} else if cached != nil {
			fmt.Fprintf(os.Stderr, "Using cached results for %s\n", module)
			return cached, nil
		}
	}

	results, err := client.Fetch(ctx, module, os.Stderr)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, module, results); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cache write failed: %v\n", err)
	}
	return results, nil
}

// renderUsage writes the requested view of the results to stdout.
func renderUsage(cmd *cobra.Command, results *sourcegraph.Results) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	nested, _ := cmd.Flags().GetBool("nested")
	projects, _ := cmd.Flags().GetBool("projects")
	top, _ := cmd.Flags().GetInt("top")

	if nested && projects {
		return fmt.Errorf("--nested and --projects are mutually exclusive")
	}

	switch {
	case nested:
		tree := usage.Nested(results)
		if jsonOutput {
			return usage.FormatJSON(tree, os.Stdout)
		}
		if yamlOutput {
			return usage.FormatYAML(tree, os.Stdout)
		}
		usage.FormatNested(tree, os.Stdout)
	case projects:
		grouped := usage.Projects(results)
		if jsonOutput {
			return usage.FormatJSON(grouped, os.Stdout)
		}
		if yamlOutput {
			return usage.FormatYAML(grouped, os.Stdout)
		}
		usage.FormatProjects(grouped, os.Stdout)
	default:
		entries := usage.Count(results)
		if top > 0 && len(entries) > top {
			entries = entries[:top]
		}
		if jsonOutput {
			return usage.FormatJSON(entries, os.Stdout)
		}
		if yamlOutput {
			return usage.FormatYAML(entries, os.Stdout)
		}
		usage.FormatTable(entries, results, os.Stdout)
	}
	return nil
}
