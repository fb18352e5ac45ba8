// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchpage

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/pkg/types"
)

func render(t *testing.T, p *Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.RenderFragment(&buf, "/page/s1"))
	return buf.String()
}

func TestTruncatable(t *testing.T) {
	assert.False(t, Truncatable(snippetOf(300), 300))
	assert.True(t, Truncatable(snippetOf(301), 300))
	assert.False(t, Truncatable(strings.Repeat("é", 300), 300), "limit counts characters, not bytes")
}

func TestRowKeys(t *testing.T) {
	keys, byURL := rowKeys([]types.PaperResult{{URL: "https://a"}, {URL: "https://b"}})
	assert.True(t, byURL)
	assert.Equal(t, []string{"u:https://a", "u:https://b"}, keys)

	keys, byURL = rowKeys([]types.PaperResult{{URL: "https://a"}, {URL: "https://a"}})
	assert.False(t, byURL)
	assert.Equal(t, []string{"i:0", "i:1"}, keys)

	keys, byURL = rowKeys([]types.PaperResult{{URL: "https://a"}, {}})
	assert.False(t, byURL)
	assert.Equal(t, []string{"i:0", "i:1"}, keys)
}

func TestReadMoreShowLess(t *testing.T) {
	h := newHarness(t, Props{Results: []types.PaperResult{
		{Title: "Long", URL: "https://long", Snippet: snippetOf(500)},
	}})

	row := h.page.View().Rows[0]
	require.True(t, row.Truncatable)
	assert.True(t, row.Collapsed())
	assert.Equal(t, "Read More", row.ToggleLabel)
	assert.Contains(t, render(t, h.page), `class="snippet collapsed"`)

	h.page.Toggle(row.Key)
	row = h.page.View().Rows[0]
	assert.False(t, row.Collapsed())
	assert.Equal(t, "Show Less", row.ToggleLabel)
	html := render(t, h.page)
	assert.NotContains(t, html, "collapsed")
	assert.Contains(t, html, snippetOf(500), "expanded snippet is shown in full")

	h.page.Toggle(row.Key)
	assert.Equal(t, "Read More", h.page.View().Rows[0].ToggleLabel)
}

func TestShortSnippetHasNoToggle(t *testing.T) {
	h := newHarness(t, Props{Results: []types.PaperResult{
		{Title: "Short", URL: "https://short", Snippet: snippetOf(300)},
	}})
	row := h.page.View().Rows[0]
	assert.False(t, row.Truncatable)
	assert.Empty(t, row.ToggleLabel)
	assert.NotContains(t, render(t, h.page), "data-toggle")
}

func TestTogglesAreIndependent(t *testing.T) {
	h := newHarness(t, Props{Results: []types.PaperResult{
		{Title: "A", URL: "https://a", Snippet: snippetOf(400)},
		{Title: "B", URL: "https://b", Snippet: snippetOf(400)},
		{Title: "C", URL: "https://c", Snippet: snippetOf(400)},
	}})
	h.page.ToggleIndex(1)
	h.page.ToggleIndex(7)

	rows := h.page.View().Rows
	assert.False(t, rows[0].Expanded)
	assert.True(t, rows[1].Expanded)
	assert.False(t, rows[2].Expanded)
}

func TestMissingSnippetPlaceholder(t *testing.T) {
	h := newHarness(t, Props{Results: []types.PaperResult{
		{Title: "No abstract", URL: "https://n"},
		{Title: "Blank", URL: "https://b", Snippet: "   "},
	}})
	for _, row := range h.page.View().Rows {
		assert.False(t, row.HasSnippet)
		assert.False(t, row.Truncatable)
	}
	html := render(t, h.page)
	assert.Equal(t, 2, strings.Count(html, "No abstract available"))
	assert.NotContains(t, html, "data-toggle")
}

func TestEmptyResultsRender(t *testing.T) {
	h := newHarness(t, Props{Query: "xyz", Results: []types.PaperResult{}})
	vm := h.page.View()
	assert.Equal(t, SectionEmpty, vm.Section)
	assert.Equal(t, `Search Results for "xyz"`, vm.Heading)

	html := render(t, h.page)
	assert.Contains(t, html, "No results found.")
	assert.Contains(t, html, "Search Results for &#34;xyz&#34;")
}

func TestSectionPrecedence(t *testing.T) {
	results := []types.PaperResult{{Title: "A", URL: "https://a", Snippet: "abstract"}}

	var h *harness
	var inside ViewModel
	h = newHarness(t, Props{Results: results, OnSearch: func([]types.PaperResult, types.API, string) error {
		inside = h.page.View()
		return nil
	}})
	h.suggester.reply = func(string) ([]string, error) { return nil, errors.New("down") }

	assert.Equal(t, SectionResults, h.page.View().Section)

	h.page.Input("abc")
	h.sched.Advance(300 * time.Millisecond)
	vm := h.page.View()
	assert.Equal(t, SectionError, vm.Section, "error wins over results")
	assert.Contains(t, render(t, h.page), `role="alert"`)
	assert.NotContains(t, render(t, h.page), `class="paper"`)

	h.page.Commit("abc")
	assert.Equal(t, SectionLoading, inside.Section, "loading wins over everything")
	assert.Equal(t, SectionResults, h.page.View().Section)
}

func TestLoadingRendersOnlyIndicator(t *testing.T) {
	var h *harness
	var html string
	h = newHarness(t, Props{
		Results: []types.PaperResult{{Title: "A", URL: "https://a"}},
		OnSearch: func([]types.PaperResult, types.API, string) error {
			html = render(t, h.page)
			return nil
		},
	})
	h.page.Commit("q")

	assert.Contains(t, html, "Loading...")
	assert.NotContains(t, html, `class="paper"`)
	assert.NotContains(t, html, "No results found.")
}

func TestSetResultsKeepsExpansionByURL(t *testing.T) {
	a := types.PaperResult{Title: "A", URL: "https://a", Snippet: snippetOf(400)}
	b := types.PaperResult{Title: "B", URL: "https://b", Snippet: snippetOf(400)}
	h := newHarness(t, Props{Results: []types.PaperResult{a, b}})
	h.page.Toggle("u:https://b")

	h.page.SetResults([]types.PaperResult{b, a})
	rows := h.page.View().Rows
	assert.True(t, rows[0].Expanded, "expansion follows the paper, not the position")
	assert.False(t, rows[1].Expanded)
}

func TestSetResultsResetsIndexKeyedExpansion(t *testing.T) {
	r := types.PaperResult{Title: "A", Snippet: snippetOf(400)}
	h := newHarness(t, Props{Results: []types.PaperResult{r, r}})
	h.page.ToggleIndex(0)
	require.True(t, h.page.View().Rows[0].Expanded)

	h.page.SetResults([]types.PaperResult{r, r})
	assert.False(t, h.page.View().Rows[0].Expanded)
}

func TestRenderFullPage(t *testing.T) {
	h := newHarness(t, Props{Query: "graph", API: types.APIDOAJ})
	h.page.Focus()
	h.page.Input("graph")
	h.sched.Advance(300 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, h.page.Render(&buf, "/page/s1"))
	html := buf.String()

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, `action="/page/s1/commit"`)
	assert.Contains(t, html, `<option value="doaj" selected>`)
	assert.Contains(t, html, `data-suggestion="graph one"`)
	assert.Contains(t, html, `id="search-page"`)
}
