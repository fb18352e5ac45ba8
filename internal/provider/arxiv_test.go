// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models are based on
      complex recurrent networks.  </summary>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2005.14165v4</id>
    <published>2020-05-28T17:29:03Z</published>
    <title>Language Models are Few-Shot Learners</title>
    <summary>Recent work has demonstrated substantial gains.</summary>
  </entry>
</feed>`

func withArxivServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := arxivAPIBase
	arxivAPIBase = ts.URL
	t.Cleanup(func() { arxivAPIBase = old })
	return ts
}

func TestArxivSearch(t *testing.T) {
	var searchQuery, maxResults string
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		searchQuery = r.URL.Query().Get("search_query")
		maxResults = r.URL.Query().Get("max_results")
		fmt.Fprint(w, arxivFixture)
	})

	a := &Arxiv{Settings: Settings{Client: ts.Client()}}
	papers, err := a.Search(context.Background(), "attention models", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if searchQuery != "all:attention AND all:models" {
		t.Errorf("search_query = %q", searchQuery)
	}
	if maxResults != "10" {
		t.Errorf("max_results = %q, want 10", maxResults)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	p := papers[0]
	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.ID != "1706.03762" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.URL != "http://arxiv.org/abs/1706.03762v7" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Snippet != "The dominant sequence transduction models are based on complex recurrent networks." {
		t.Errorf("Snippet = %q", p.Snippet)
	}
	if p.Year != 2017 {
		t.Errorf("Year = %d", p.Year)
	}
}

func TestArxivSearchYearFilter(t *testing.T) {
	ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, arxivFixture)
	})
	a := &Arxiv{Settings: Settings{Client: ts.Client()}}

	papers, err := a.Search(context.Background(), "language", 2020)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 || papers[0].Year != 2020 {
		t.Fatalf("papers = %+v, want the 2020 entry only", papers)
	}
}

func TestArxivSuggestUnsupported(t *testing.T) {
	a := &Arxiv{}
	_, err := a.Suggest(context.Background(), "anything")
	if !errors.Is(err, ErrSuggestionsUnsupported) {
		t.Errorf("err = %v, want ErrSuggestionsUnsupported", err)
	}
}

func TestArxivReferences(t *testing.T) {
	var searchQuery string
	ts := withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		searchQuery = r.URL.Query().Get("search_query")
		fmt.Fprint(w, arxivFixture)
	})
	a := &Arxiv{Settings: Settings{Client: ts.Client()}}

	refs, err := a.References(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("References: %v", err)
	}
	if searchQuery != "id:1706.03762" {
		t.Errorf("search_query = %q", searchQuery)
	}
	if len(refs) != 2 || refs[1].Year != 2020 {
		t.Errorf("refs = %+v", refs)
	}
}

func TestArxivMalformedFeed(t *testing.T) {
	ts := withArxivServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<feed><entry><id>")
	})
	a := &Arxiv{Settings: Settings{Client: ts.Client()}}

	if _, err := a.Search(context.Background(), "x", 0); err == nil {
		t.Error("expected parse error for truncated feed")
	}
}
