// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/history"
	"github.com/pdiddy/paper-search/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches from the search log",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg, log)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("search log disabled: set --history-db or server.history_db")
	}
	defer store.Close()

	opts := history.ListOptions{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if apiFlag, _ := cmd.Flags().GetString("api"); apiFlag != "" {
		if opts.API, err = types.ParseAPI(apiFlag); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		return store.ExportYAML(ctx, os.Stdout, opts)
	}

	entries, err := store.List(ctx, opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No searches recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-16s  %-7s  %s\n", "When", "API", "Results", "Query")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, e := range entries {
		results := fmt.Sprint(e.Results)
		if e.Error != "" {
			results = "error"
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-16s  %-7s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.API, results, e.Query)
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().String("api", "", "only show searches against this provider")
	historyCmd.Flags().Bool("yaml", false, "export entries as YAML")

	rootCmd.AddCommand(historyCmd)
}
