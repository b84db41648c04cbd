// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depscope/internal/pysrc"
	"github.com/pdiddy/depscope/internal/usage"
)

var sourceCmd = &cobra.Command{
	Use:   "source [input]",
	Short: "Analyze local Python source without network access",
	Long: `Source extracts imports and fully-qualified dependency uses from local
Python code. The input is detected automatically: a path to a .py file or
Jupyter notebook, a directory (walked recursively for *.py files),
base64-encoded source, or raw source text. Use "-" to read from stdin.

By default every dependency of every imported module is listed; restrict
the view to specific modules with --module.`,
	Args: cobra.ExactArgs(1),
	RunE: runSource,
}

func init() {
	sourceCmd.Flags().StringSlice("module", nil, "restrict output to these modules (repeatable)")
	sourceCmd.Flags().Bool("imports-only", false, "list imported modules instead of dependency uses")
	sourceCmd.Flags().Bool("mapping", false, "for folders, list results per file")
	sourceCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, args []string) error {
	modules, _ := cmd.Flags().GetStringSlice("module")
	importsOnly, _ := cmd.Flags().GetBool("imports-only")
	mapping, _ := cmd.Flags().GetBool("mapping")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	analyzer, err := analyzerForInput(args[0])
	if err != nil {
		return err
	}

	if mapping {
		folder, ok := analyzer.(*pysrc.Folder)
		if !ok {
			return fmt.Errorf("--mapping requires a directory input")
		}
		return renderMapping(folder, modules, importsOnly, jsonOutput)
	}

	var names []string
	if importsOnly {
		names = analyzer.Imports()
	} else {
		names = analyzer.Dependencies(modules...)
	}

	if jsonOutput {
		return usage.FormatJSON(names, os.Stdout)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func analyzerForInput(input string) (pysrc.Analyzer, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return pysrc.FromString(string(data))
	}
	return pysrc.Detect(input)
}

func renderMapping(folder *pysrc.Folder, modules []string, importsOnly, jsonOutput bool) error {
	var byFile map[string][]string
	if importsOnly {
		byFile = folder.ImportsByFile()
	} else {
		byFile = folder.DependenciesByFile(modules...)
	}

	if jsonOutput {
		return usage.FormatJSON(byFile, os.Stdout)
	}

	for _, path := range folder.Files() {
		fmt.Printf("%s:\n", path)
		for _, name := range byFile[path] {
			fmt.Printf("  %s\n", name)
		}
	}
	if errs := folder.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d file(s) could not be analyzed\n", len(errs))
	}
	return nil
}
