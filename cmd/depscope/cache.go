// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/depscope/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local fetch cache",
	Long: `Cache manages the local SQLite database of fetched search results.
Use subcommands to list cached modules or clear entries.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached fetches",
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [module]",
	Short: "Remove a cached fetch, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(loadConfig().Cache)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-20s  %-6s  %s\n", "Module", "Fetched", "Files", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
	for _, e := range entries {
		status := "fresh"
		if e.Expired {
			status = "expired"
		}
		fmt.Fprintf(os.Stdout, "%-30s  %-20s  %-6d  %s\n",
			e.Module, e.FetchedAt.Local().Format(time.DateTime), e.Files, status)
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	module := ""
	if len(args) == 1 {
		module = args[0]
	}

	s, err := store.NewStore(loadConfig().Cache)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Clear(context.Background(), module)
	if err != nil {
		return err
	}
	if module != "" && n == 0 {
		fmt.Printf("No cached fetch for %s.\n", module)
		return nil
	}
	fmt.Printf("Removed %d cached fetch(es).\n", n)
	return nil
}
