// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-search/internal/provider"
	"github.com/pdiddy/paper-search/pkg/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [text]",
	Short: "Print autocomplete suggestions for partial input",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func runSuggest(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	apiFlag, _ := cmd.Flags().GetString("api")
	api, err := types.ParseAPI(apiFlag)
	if err != nil {
		return err
	}

	cfg, _, registry, err := setup(nil)
	if err != nil {
		return err
	}
	if n := utf8.RuneCountInString(text); n < cfg.Page.MinSuggestLength {
		return fmt.Errorf("input must be at least %d characters, got %d", cfg.Page.MinSuggestLength, n)
	}

	list, err := registry.Suggest(context.Background(), text, api)
	if errors.Is(err, provider.ErrSuggestionsUnsupported) {
		fmt.Fprintf(os.Stderr, "%s does not support suggestions; try semantic_scholar or doaj\n", api.Label())
		return nil
	}
	if err != nil {
		return err
	}
	for _, s := range list {
		fmt.Println(s)
	}
	return nil
}

func init() {
	suggestCmd.Flags().String("api", string(types.DefaultAPI), "provider: semantic_scholar, arxiv_papers, doaj")

	rootCmd.AddCommand(suggestCmd)
}
