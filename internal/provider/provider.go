// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider talks to the external paper APIs (Semantic Scholar,
// arXiv, DOAJ). Ranking and suggestion generation stay with those APIs;
// this package only builds requests, decodes responses, and guards the
// calls with retries, circuit breakers and a suggestion cache.
package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pdiddy/paper-search/pkg/types"
)

var (
	// ErrEmptyQuery is returned when a search or suggestion has no terms.
	ErrEmptyQuery = errors.New("no query provided")

	// ErrSuggestionsUnsupported is returned by providers without a
	// suggestion endpoint.
	ErrSuggestionsUnsupported = errors.New("provider does not support suggestions")

	// ErrNoReferences is returned when a reference lookup yields nothing.
	ErrNoReferences = errors.New("no references found")
)

// Provider is one external paper API. Each API implements this interface
// and the Registry dispatches to it by selector.
type Provider interface {
	API() types.API
	Search(ctx context.Context, query string, year int) ([]types.PaperResult, error)
	Suggest(ctx context.Context, text string) ([]string, error)
	References(ctx context.Context, paperID string) ([]types.Reference, error)
}

// Settings carries the HTTP knobs shared by every provider client.
type Settings struct {
	Client     *http.Client
	UserAgent  string
	MaxResults int
	MaxRetries int
}

func (s Settings) limit() int {
	if s.MaxResults <= 0 {
		return 10
	}
	return s.MaxResults
}

func (s Settings) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s Settings) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	return req, nil
}

// Observer receives call outcomes; the server backs it with Prometheus.
type Observer interface {
	ObserveCall(api types.API, op string, d time.Duration, err error)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(types.API, string, time.Duration, error) {}
func (nopObserver) ObserveCache(bool)                                  {}

// filterYear keeps only papers from year; zero keeps everything.
func filterYear(papers []types.PaperResult, year int) []types.PaperResult {
	if year == 0 {
		return papers
	}
	out := papers[:0]
	for _, p := range papers {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out
}

func titles(papers []types.PaperResult) []string {
	out := make([]string, 0, len(papers))
	for _, p := range papers {
		if p.Title != "" {
			out = append(out, p.Title)
		}
	}
	return out
}
