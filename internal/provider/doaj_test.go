// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doajFixture = `{"total":2,"results":[
 {"id":"d1","bibjson":{"title":"Open Science","abstract":"About openness.","year":"2021","link":[{"url":"https://doaj.org/d1","type":"fulltext"}]}},
 {"id":"d2","bibjson":{"title":"Closed Science","year":"2019","link":[]}}
]}`

func withDOAJServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := doajSearchBase
	doajSearchBase = ts.URL + "/api/v1/search/articles"
	t.Cleanup(func() { doajSearchBase = old })
	return ts
}

func TestDOAJSearch(t *testing.T) {
	var captured *http.Request
	ts := withDOAJServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, doajFixture)
	})

	d := &DOAJ{Settings: Settings{Client: ts.Client()}, APIKey: "doaj-key"}
	papers, err := d.Search(context.Background(), "open science", 0)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/search/articles/open science", captured.URL.Path)
	assert.Equal(t, "doaj-key", captured.URL.Query().Get("api_key"))
	assert.Equal(t, "10", captured.URL.Query().Get("pageSize"))

	require.Len(t, papers, 2)
	assert.Equal(t, "https://doaj.org/d1", papers[0].URL)
	assert.Equal(t, 2021, papers[0].Year)
	assert.Equal(t, "", papers[1].URL)
	assert.False(t, papers[1].HasSnippet())

	papers, err = d.Search(context.Background(), "open science", 2019)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "d2", papers[0].ID)
}

func TestDOAJNon200IsEmptyAndLogged(t *testing.T) {
	ts := withDOAJServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "bad key")
	})
	log, hook := test.NewNullLogger()

	d := &DOAJ{Settings: Settings{Client: ts.Client()}, Log: log}
	papers, err := d.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, papers)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusForbidden, hook.LastEntry().Data["status"])
}

func TestDOAJSuggestAndReferences(t *testing.T) {
	ts := withDOAJServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, doajFixture)
	})
	d := &DOAJ{Settings: Settings{Client: ts.Client()}}

	got, err := d.Suggest(context.Background(), "science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Open Science", "Closed Science"}, got)

	refs, err := d.References(context.Background(), "d1")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
