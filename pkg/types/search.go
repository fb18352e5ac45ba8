// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-search: the
// results handed to the search page, provider selectors, the search log
// entry, and configuration.
package types

import "time"

// SearchRequest is the body of a paper search.
type SearchRequest struct {
	// Query is the free-text search. AND/OR between terms are honoured by
	// providers that support boolean queries.
	Query string `json:"query" yaml:"query"`

	// Year keeps only papers published in that year when non-zero.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// API selects the provider; empty means DefaultAPI.
	API API `json:"api,omitempty" yaml:"api,omitempty"`
}

// HistoryEntry records one committed search.
type HistoryEntry struct {
	ID        int64     `json:"id" yaml:"id"`
	Query     string    `json:"query" yaml:"query"`
	API       API       `json:"api" yaml:"api"`
	Year      int       `json:"year,omitempty" yaml:"year,omitempty"`
	Results   int       `json:"results" yaml:"results"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
