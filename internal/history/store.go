// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite log of committed searches.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

const defaultLimit = 20

// Store manages the search log database.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
	now func() time.Time
}

// Open opens or creates the search log at path. ":memory:" gives a private
// in-memory database.
func Open(path string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			api TEXT NOT NULL,
			year INTEGER,
			results INTEGER NOT NULL,
			error TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one search outcome. searchErr is the provider error, if
// any; results is the number of papers returned.
func (s *Store) Record(ctx context.Context, req types.SearchRequest, results int, searchErr error) (types.HistoryEntry, error) {
	entry := types.HistoryEntry{
		Query:     req.Query,
		API:       req.API,
		Year:      req.Year,
		Results:   results,
		CreatedAt: s.now().UTC(),
	}
	if entry.API == "" {
		entry.API = types.DefaultAPI
	}
	if searchErr != nil {
		entry.Error = searchErr.Error()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (query, api, year, results, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Query, string(entry.API), entry.Year, entry.Results, entry.Error,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("inserting search: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return types.HistoryEntry{}, fmt.Errorf("reading search id: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"query":   entry.Query,
		"api":     entry.API,
		"results": entry.Results,
	}).Debug("recorded search")
	return entry, nil
}

// ListOptions filters List.
type ListOptions struct {
	// API keeps only searches against one provider when set.
	API types.API
	// Limit caps the number of entries (default 20).
	Limit int
}

// List returns the most recent searches first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.HistoryEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, query, api, COALESCE(year, 0), results, COALESCE(error, ''), created_at FROM searches`
	var args []any
	if opts.API != "" {
		query += ` WHERE api = ?`
		args = append(args, string(opts.API))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var (
			e       types.HistoryEntry
			api     string
			created string
		)
		if err := rows.Scan(&e.ID, &e.Query, &api, &e.Year, &e.Results, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		e.API = types.API(api)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes the listed searches to w as a YAML sequence.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts ListOptions) error {
	entries, err := s.List(ctx, opts)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
