// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"encoding/json"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form,
// consumable by Pandoc and reference managers.
type CSLItem struct {
	ID     string   `yaml:"id" json:"id"`
	Type   string   `yaml:"type" json:"type"`
	Title  string   `yaml:"title" json:"title"`
	URL    string   `yaml:"URL,omitempty" json:"URL,omitempty"`
	Issued *CSLDate `yaml:"issued,omitempty" json:"issued,omitempty"`
	DOI    string   `yaml:"DOI,omitempty" json:"DOI,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts" json:"date-parts"`
}

// FormatReferencesJSON writes refs as an indented JSON array.
func FormatReferencesJSON(refs []types.Reference, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(refs)
}

// FormatReferencesCSL writes refs as a CSL-YAML list.
func FormatReferencesCSL(refs []types.Reference, w io.Writer) error {
	items := make([]CSLItem, len(refs))
	for i, r := range refs {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r types.Reference) CSLItem {
	item := CSLItem{
		ID:    r.ID,
		Type:  "article",
		Title: r.Title,
		URL:   r.URL,
	}
	if item.ID == "" {
		item.ID = r.URL
	}
	if r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}
	if strings.HasPrefix(r.ID, "10.") {
		item.DOI = r.ID
	}
	return item
}
