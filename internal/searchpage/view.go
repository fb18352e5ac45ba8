// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchpage

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Section names the one body section shown. They are mutually exclusive,
// in precedence order.
type Section string

const (
	SectionLoading Section = "loading"
	SectionError   Section = "error"
	SectionResults Section = "results"
	SectionEmpty   Section = "empty"
)

// APIOption is one entry of the provider selector.
type APIOption struct {
	Value    types.API
	Label    string
	Selected bool
}

// ViewModel is a snapshot of everything the page renders.
type ViewModel struct {
	Query           string
	DisplayedQuery  string
	Heading         string
	API             types.API
	APIs            []APIOption
	Loading         bool
	Error           string
	Focused         bool
	Suggestions     []string
	ShowSuggestions bool
	Rows            []Row
	Section         Section
	// RefreshMs is how long the browser waits after typing before it
	// re-reads the page to pick up suggestions.
	RefreshMs int64
	// ActionBase prefixes the event endpoints in the rendered markup.
	ActionBase string
}

// View returns a snapshot of the page state.
func (p *Page) View() ViewModel {
	p.mu.Lock()
	defer p.mu.Unlock()

	vm := ViewModel{
		Query:          p.query,
		DisplayedQuery: p.displayed,
		Heading:        `Search Results for "` + p.displayed + `"`,
		API:            p.props.API,
		Loading:        p.loading,
		Error:          p.errMsg,
		Focused:        p.focused,
		Suggestions:    append([]string(nil), p.suggestions...),
		Rows:           buildRows(p.props.Results, p.keys, p.expanded, p.cfg.SnippetLimit),
		RefreshMs:      (p.cfg.SuggestDebounce + p.cfg.BlurDelay).Milliseconds(),
	}
	vm.ShowSuggestions = vm.Focused && len(vm.Suggestions) > 0

	for _, a := range types.AllAPIs() {
		vm.APIs = append(vm.APIs, APIOption{Value: a, Label: a.Label(), Selected: a == p.props.API})
	}

	switch {
	case vm.Loading:
		vm.Section = SectionLoading
	case vm.Error != "":
		vm.Section = SectionError
	case len(vm.Rows) > 0:
		vm.Section = SectionResults
	default:
		vm.Section = SectionEmpty
	}
	return vm
}

//go:embed page.html.tmpl
var pageTemplateText string

var pageTemplate = template.Must(template.New("searchpage").Parse(pageTemplateText))

// Render writes the full HTML document for the page.
func (p *Page) Render(w io.Writer, actionBase string) error {
	vm := p.View()
	vm.ActionBase = actionBase
	return RenderView(w, vm, "page")
}

// RenderFragment writes only the #search-page element, used to swap the
// page in place after an event.
func (p *Page) RenderFragment(w io.Writer, actionBase string) error {
	vm := p.View()
	vm.ActionBase = actionBase
	return RenderView(w, vm, "body")
}

// RenderView executes the named template ("page" or "body") for vm.
func RenderView(w io.Writer, vm ViewModel, name string) error {
	if err := pageTemplate.ExecuteTemplate(w, name, vm); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}
