// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, types.SearchRequest{Query: "graph neural networks"}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAPI, first.API)
	assert.NotZero(t, first.ID)

	_, err = s.Record(ctx, types.SearchRequest{Query: "transformers", API: types.APIArxiv, Year: 2017}, 0, errors.New("arxiv search: timeout"))
	require.NoError(t, err)

	entries, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "transformers", entries[0].Query, "newest first")
	assert.Equal(t, types.APIArxiv, entries[0].API)
	assert.Equal(t, 2017, entries[0].Year)
	assert.Equal(t, "arxiv search: timeout", entries[0].Error)
	assert.Equal(t, "graph neural networks", entries[1].Query)
	assert.Equal(t, 10, entries[1].Results)
	assert.Empty(t, entries[1].Error)
	assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))
}

func TestListFiltersAndLimits(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, api := range []types.API{types.APIDOAJ, types.APIArxiv, types.APIDOAJ, types.APIDOAJ} {
		_, err := s.Record(ctx, types.SearchRequest{Query: "q", API: api}, 1, nil)
		require.NoError(t, err)
	}

	entries, err := s.List(ctx, ListOptions{API: types.APIDOAJ})
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = s.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestOpenFileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	log, _ := test.NewNullLogger()

	s, err := Open(path, log)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), types.SearchRequest{Query: "persisted"}, 3, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, log)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].Query)
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var empty bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &empty, ListOptions{}))
	assert.Equal(t, "[]\n", empty.String())

	_, err := s.Record(ctx, types.SearchRequest{Query: "bert"}, 7, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, ListOptions{}))

	var got []types.HistoryEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bert", got[0].Query)
	assert.Equal(t, 7, got[0].Results)
}
