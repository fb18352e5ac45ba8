// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// doajSearchBase is the DOAJ article search endpoint; the query is the
// last path segment. Declared as a var so tests can substitute an
// httptest server.
var doajSearchBase = "https://doaj.org/api/v1/search/articles"

// DOAJ queries the Directory of Open Access Journals. A non-200 answer is
// logged and treated as an empty result set, not an error.
type DOAJ struct {
	Settings
	APIKey string
	Log    logrus.FieldLogger
}

// API returns the selector for this provider.
func (d *DOAJ) API() types.API { return types.APIDOAJ }

// Search returns articles matching query, optionally restricted to year.
func (d *DOAJ) Search(ctx context.Context, query string, year int) ([]types.PaperResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{"pageSize": {strconv.Itoa(d.limit())}}
	if d.APIKey != "" {
		params.Set("api_key", d.APIKey)
	}
	reqURL := doajSearchBase + "/" + url.PathEscape(query) + "?" + params.Encode()

	req, err := d.newRequest(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, d.client(), req, d.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("DOAJ API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		d.logger().WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("failed to fetch DOAJ papers")
		return []types.PaperResult{}, nil
	}

	var dr doajResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("parsing DOAJ response: %w", err)
	}

	papers := make([]types.PaperResult, 0, len(dr.Results))
	for _, a := range dr.Results {
		p := types.PaperResult{
			ID:      a.ID,
			Title:   a.Bibjson.Title,
			Snippet: a.Bibjson.Abstract,
		}
		if len(a.Bibjson.Link) > 0 {
			p.URL = a.Bibjson.Link[0].URL
		}
		if y, err := strconv.Atoi(strings.TrimSpace(a.Bibjson.Year)); err == nil {
			p.Year = y
		}
		papers = append(papers, p)
	}
	return filterYear(papers, year), nil
}

// Suggest returns titles of articles matching text.
func (d *DOAJ) Suggest(ctx context.Context, text string) ([]string, error) {
	papers, err := d.Search(ctx, text, 0)
	if err != nil {
		return nil, err
	}
	return titles(papers), nil
}

// References is not offered by DOAJ and always returns an empty list.
func (d *DOAJ) References(context.Context, string) ([]types.Reference, error) {
	return []types.Reference{}, nil
}

func (d *DOAJ) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

// DOAJ API JSON structures.
type doajResponse struct {
	Total   int           `json:"total"`
	Results []doajArticle `json:"results"`
}

type doajArticle struct {
	ID      string `json:"id"`
	Bibjson struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		Year     string `json:"year"`
		Link     []struct {
			URL  string `json:"url"`
			Type string `json:"type"`
		} `json:"link"`
	} `json:"bibjson"`
}
