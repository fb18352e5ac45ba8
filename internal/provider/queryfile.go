// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// QueryFile is the on-disk form of a search and its results, so a search
// can be reloaded later without calling the provider again.
type QueryFile struct {
	Request types.SearchRequest `yaml:"request"`
	Papers  []types.PaperResult `yaml:"papers"`
	Summary QuerySummary        `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves req and its papers to a YAML file.
func WriteQueryFile(path string, req types.SearchRequest, papers []types.PaperResult) error {
	if req.API == "" {
		req.API = types.DefaultAPI
	}
	qf := QueryFile{
		Request: req,
		Papers:  papers,
		Summary: QuerySummary{
			Total:     len(papers),
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if _, err := types.ParseAPI(string(qf.Request.API)); err != nil {
		return nil, fmt.Errorf("query file %s: %w", path, err)
	}
	return &qf, nil
}
