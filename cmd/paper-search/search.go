// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/provider"
	"github.com/pdiddy/paper-search/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a paper API from the terminal",
	Long: `Search queries one provider (semantic_scholar, arxiv_papers or doaj) and
prints the matching papers. Terms are joined with AND; write AND or OR
between terms to group them explicitly.

Use --save to keep the results in a YAML query file and --load to print a
saved file without calling the provider.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if load, _ := cmd.Flags().GetString("load"); load != "" {
		qf, err := provider.ReadQueryFile(load)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Loaded %d paper(s) for %q from %s\n", qf.Summary.Total, qf.Request.Query, load)
		return formatPapers(os.Stdout, qf.Papers, jsonOutput)
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query required: provide search terms or --load")
	}
	apiFlag, _ := cmd.Flags().GetString("api")
	api, err := types.ParseAPI(apiFlag)
	if err != nil {
		return err
	}
	year, _ := cmd.Flags().GetInt("year")
	req := types.SearchRequest{Query: query, Year: year, API: api}

	cfg, log, registry, err := setup(nil)
	if err != nil {
		return err
	}
	ctx := context.Background()
	papers, searchErr := registry.Search(ctx, req)

	store, err := openHistory(cfg, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		if _, err := store.Record(ctx, req, len(papers), searchErr); err != nil {
			log.WithError(err).Warn("recording search history")
		}
	}
	if searchErr != nil {
		return searchErr
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := provider.WriteQueryFile(save, req, papers); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d paper(s) to %s\n", len(papers), save)
	}
	return formatPapers(os.Stdout, papers, jsonOutput)
}

func formatPapers(w io.Writer, papers []types.PaperResult, jsonOutput bool) error {
	if jsonOutput {
		if papers == nil {
			papers = []types.PaperResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	for i, p := range papers {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf(" (%d)", p.Year)
		}
		fmt.Fprintf(w, "%2d. %s%s\n    %s\n", i+1, p.Title, year, p.URL)
	}
	return nil
}

func init() {
	searchCmd.Flags().String("api", string(types.DefaultAPI), "provider: semantic_scholar, arxiv_papers, doaj")
	searchCmd.Flags().Int("year", 0, "keep only papers published in this year")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write the results to a YAML query file")
	searchCmd.Flags().String("load", "", "print results from a saved query file")

	rootCmd.AddCommand(searchCmd)
}
