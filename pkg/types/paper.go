// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// PaperResult is one paper returned by a provider search. It is immutable
// once received; the page only reads it.
type PaperResult struct {
	// ID is the provider identifier (Semantic Scholar paper ID, arXiv ID or DOAJ id).
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL links to the paper landing page.
	URL string `json:"url" yaml:"url"`

	// Snippet is the abstract. Empty means the provider had none.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// HasSnippet reports whether the result carries an abstract.
func (p PaperResult) HasSnippet() bool {
	return strings.TrimSpace(p.Snippet) != ""
}

// Reference is a paper cited by another paper.
type Reference struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Year  int    `json:"year,omitempty" yaml:"year,omitempty"`
}

// API selects the external paper provider.
type API string

const (
	APISemanticScholar API = "semantic_scholar"
	APIArxiv           API = "arxiv_papers"
	APIDOAJ            API = "doaj"
)

// DefaultAPI is used when no selector is given.
const DefaultAPI = APISemanticScholar

// ErrUnsupportedAPI is returned when an API selector names no known provider.
var ErrUnsupportedAPI = errors.New("unsupported API")

// AllAPIs lists every known selector in display order.
func AllAPIs() []API {
	return []API{APISemanticScholar, APIArxiv, APIDOAJ}
}

// ParseAPI converts a selector string to an API. Matching is
// case-insensitive and an empty string yields DefaultAPI.
func ParseAPI(s string) (API, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultAPI, nil
	}
	for _, a := range AllAPIs() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAPI, s)
}

// Label returns a human readable provider name.
func (a API) Label() string {
	switch a {
	case APISemanticScholar:
		return "Semantic Scholar"
	case APIArxiv:
		return "arXiv"
	case APIDOAJ:
		return "DOAJ"
	default:
		return string(a)
	}
}
