// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// Semantic Scholar endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	semanticSearchURL     = "https://api.semanticscholar.org/graph/v1/paper/search"
	semanticReferencesURL = "https://api.semanticscholar.org/graph/v1/paper/%s/references"
)

const (
	semanticSearchFields    = "title,url,abstract,year"
	semanticReferenceFields = "title,url,year"
)

// SemanticScholar queries the Semantic Scholar Graph API.
type SemanticScholar struct {
	Settings
	APIKey string
}

// API returns the selector for this provider.
func (s *SemanticScholar) API() types.API { return types.APISemanticScholar }

// Search returns papers matching query, optionally restricted to year.
func (s *SemanticScholar) Search(ctx context.Context, query string, year int) ([]types.PaperResult, error) {
	papers, err := s.search(ctx, query, semanticSearchFields)
	if err != nil {
		return nil, err
	}
	return filterYear(papers, year), nil
}

// Suggest returns titles of papers matching text.
func (s *SemanticScholar) Suggest(ctx context.Context, text string) ([]string, error) {
	papers, err := s.search(ctx, text, "title")
	if err != nil {
		return nil, err
	}
	return titles(papers), nil
}

func (s *SemanticScholar) search(ctx context.Context, query, fields string) ([]types.PaperResult, error) {
	q := ConstructQuery(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{
		"query":  {q},
		"fields": {fields},
		"limit":  {strconv.Itoa(s.limit())},
	}

	var sr semanticSearchResponse
	if err := s.getJSON(ctx, semanticSearchURL+"?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	papers := make([]types.PaperResult, 0, len(sr.Data))
	for _, p := range sr.Data {
		papers = append(papers, types.PaperResult{
			ID:      p.PaperID,
			Title:   p.Title,
			URL:     p.URL,
			Snippet: p.Abstract,
			Year:    p.Year,
		})
	}
	return papers, nil
}

// References returns the papers cited by paperID.
func (s *SemanticScholar) References(ctx context.Context, paperID string) ([]types.Reference, error) {
	if paperID == "" {
		return nil, fmt.Errorf("empty paper id")
	}
	reqURL := fmt.Sprintf(semanticReferencesURL, url.PathEscape(paperID)) +
		"?" + url.Values{"fields": {semanticReferenceFields}}.Encode()

	var rr semanticReferencesResponse
	if err := s.getJSON(ctx, reqURL, &rr); err != nil {
		return nil, err
	}

	refs := make([]types.Reference, 0, len(rr.Data))
	for _, d := range rr.Data {
		if d.CitedPaper.Title == "" {
			continue
		}
		refs = append(refs, types.Reference{
			ID:    d.CitedPaper.PaperID,
			Title: d.CitedPaper.Title,
			URL:   d.CitedPaper.URL,
			Year:  d.CitedPaper.Year,
		})
	}
	return refs, nil
}

func (s *SemanticScholar) getJSON(ctx context.Context, reqURL string, v interface{}) error {
	req, err := s.newRequest(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client(), req, s.MaxRetries)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
}

type semanticReferencesResponse struct {
	Data []struct {
		CitedPaper semanticPaper `json:"citedPaper"`
	} `json:"data"`
}
