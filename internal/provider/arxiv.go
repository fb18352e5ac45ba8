// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

// Arxiv queries the arXiv Atom API. arXiv has no suggestion endpoint.
type Arxiv struct {
	Settings
}

// API returns the selector for this provider.
func (a *Arxiv) API() types.API { return types.APIArxiv }

// Search returns papers matching query, optionally restricted to year.
func (a *Arxiv) Search(ctx context.Context, query string, year int) ([]types.PaperResult, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	entries, err := a.fetch(ctx, url.Values{
		"search_query": {q},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(a.limit())},
	})
	if err != nil {
		return nil, err
	}

	papers := make([]types.PaperResult, 0, len(entries))
	for _, e := range entries {
		papers = append(papers, types.PaperResult{
			ID:      extractArxivID(e.ID),
			Title:   collapseSpace(e.Title),
			URL:     strings.TrimSpace(e.ID),
			Snippet: collapseSpace(e.Summary),
			Year:    e.year(),
		})
	}
	return filterYear(papers, year), nil
}

// Suggest always fails with ErrSuggestionsUnsupported.
func (a *Arxiv) Suggest(context.Context, string) ([]string, error) {
	return nil, ErrSuggestionsUnsupported
}

// References looks up paperID and returns the matching entries.
func (a *Arxiv) References(ctx context.Context, paperID string) ([]types.Reference, error) {
	if paperID == "" {
		return nil, fmt.Errorf("empty paper id")
	}
	entries, err := a.fetch(ctx, url.Values{"search_query": {"id:" + paperID}})
	if err != nil {
		return nil, err
	}

	refs := make([]types.Reference, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, types.Reference{
			ID:    extractArxivID(e.ID),
			Title: collapseSpace(e.Title),
			URL:   strings.TrimSpace(e.ID),
			Year:  e.year(),
		})
	}
	return refs, nil
}

func (a *Arxiv) fetch(ctx context.Context, params url.Values) ([]arxivEntry, error) {
	req, err := a.newRequest(ctx, arxivAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, a.client(), req, a.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return feed.Entries, nil
}

// buildArxivQuery turns free text into an arXiv search_query, searching
// all fields for each term and keeping explicit AND/OR.
func buildArxivQuery(query string) string {
	clauses := parseClauses(query)
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		terms := make([]string, len(c.terms))
		for i, t := range c.terms {
			terms[i] = arxivTerm(t)
		}
		if len(terms) == 1 {
			parts = append(parts, terms[0])
			continue
		}
		parts = append(parts, "("+strings.Join(terms, " "+c.op+" ")+")")
	}
	return strings.Join(parts, " AND ")
}

func arxivTerm(t string) string {
	words := strings.Fields(t)
	if len(words) > 1 {
		// Nested group from mixed operators.
		for i, w := range words {
			if w != "AND" && w != "OR" {
				words[i] = arxivTerm(w)
			}
		}
		return "(" + strings.Join(words, " ") + ")"
	}
	if strings.Contains(t, ":") {
		return t
	}
	return "all:" + t
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}

func (e arxivEntry) year() int {
	p := strings.TrimSpace(e.Published)
	if len(p) < 4 {
		return 0
	}
	y, err := strconv.Atoi(p[:4])
	if err != nil {
		return 0
	}
	return y
}
