// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/provider"
	"github.com/pdiddy/paper-search/pkg/types"
)

var referencesCmd = &cobra.Command{
	Use:   "references <paper-id>",
	Short: "Download the references of a paper",
	Long: `References fetches the papers cited by <paper-id> and writes them as JSON
or, with --format csl, as CSL-YAML for Pandoc and reference managers.`,
	Args: cobra.ExactArgs(1),
	RunE: runReferences,
}

func runReferences(cmd *cobra.Command, args []string) error {
	apiFlag, _ := cmd.Flags().GetString("api")
	api, err := types.ParseAPI(apiFlag)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "csl" {
		return fmt.Errorf("unknown format %q: use json or csl", format)
	}

	_, _, registry, err := setup(nil)
	if err != nil {
		return err
	}
	refs, err := registry.References(context.Background(), args[0], api)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
		fmt.Fprintf(os.Stderr, "Writing %d reference(s) to %s\n", len(refs), out)
	}

	if format == "csl" {
		return provider.FormatReferencesCSL(refs, w)
	}
	return provider.FormatReferencesJSON(refs, w)
}

func init() {
	referencesCmd.Flags().String("api", string(types.DefaultAPI), "provider: semantic_scholar, arxiv_papers, doaj")
	referencesCmd.Flags().String("format", "json", "output format: json or csl")
	referencesCmd.Flags().String("out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(referencesCmd)
}
