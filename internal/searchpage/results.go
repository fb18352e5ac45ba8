// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchpage

import (
	"strconv"
	"unicode/utf8"

	"github.com/pdiddy/paper-search/pkg/types"
)

const (
	labelReadMore   = "Read More"
	labelShowLess   = "Show Less"
	labelNoAbstract = "No abstract available"
)

// Truncatable reports whether snippet is longer than limit characters and
// therefore gets a Read More control.
func Truncatable(snippet string, limit int) bool {
	return utf8.RuneCountInString(snippet) > limit
}

// rowKeys returns the expand/collapse key of every row. Rows are keyed by
// URL when every result has a distinct non-empty URL; otherwise by list
// position, which is only meaningful until the list is replaced.
func rowKeys(results []types.PaperResult) (keys []string, byURL bool) {
	keys = make([]string, len(results))
	seen := make(map[string]struct{}, len(results))
	byURL = true
	for _, r := range results {
		if r.URL == "" {
			byURL = false
			break
		}
		if _, dup := seen[r.URL]; dup {
			byURL = false
			break
		}
		seen[r.URL] = struct{}{}
	}
	for i, r := range results {
		if byURL {
			keys[i] = "u:" + r.URL
		} else {
			keys[i] = "i:" + strconv.Itoa(i)
		}
	}
	return keys, byURL
}

// Row is one rendered result.
type Row struct {
	Index       int
	Key         string
	Title       string
	URL         string
	Snippet     string
	Year        int
	HasSnippet  bool
	Truncatable bool
	Expanded    bool
	ToggleLabel string
}

// Collapsed reports whether the row renders at the fixed collapsed height.
func (r Row) Collapsed() bool {
	return r.Truncatable && !r.Expanded
}

// Placeholder is shown instead of the snippet when there is none.
func (r Row) Placeholder() string {
	return labelNoAbstract
}

func buildRows(results []types.PaperResult, keys []string, expanded map[string]bool, limit int) []Row {
	rows := make([]Row, len(results))
	for i, res := range results {
		row := Row{
			Index:      i,
			Key:        keys[i],
			Title:      res.Title,
			URL:        res.URL,
			Snippet:    res.Snippet,
			Year:       res.Year,
			HasSnippet: res.HasSnippet(),
		}
		if row.HasSnippet && Truncatable(res.Snippet, limit) {
			row.Truncatable = true
			row.Expanded = expanded[row.Key]
			row.ToggleLabel = labelReadMore
			if row.Expanded {
				row.ToggleLabel = labelShowLess
			}
		}
		rows[i] = row
	}
	return rows
}
