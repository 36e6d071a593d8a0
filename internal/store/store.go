// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists fetched articles one JSON file per PMID. The
// identifier-keyed layout makes writes for different identifiers
// conflict-free and repeat writes idempotent.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// AbstractsSubdir is the record store location under the data directory.
const AbstractsSubdir = "abstracts"

// Store is the on-disk article record store.
type Store struct {
	dir string
}

// Open ensures the store directory exists under dataDir and returns the
// store. Failure here is fatal to the caller: without reliable
// persistence the resumability contract cannot hold.
func Open(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, AbstractsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating record store %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Exists reports whether a record for id has already been persisted.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Write persists one article under its PMID via a temp file and rename,
// so a crash mid-write never leaves a torn record behind.
func (s *Store) Write(a *types.Article) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", a.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".record-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing record %s: %w", a.ID, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.path(a.ID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming record %s: %w", a.ID, err)
	}
	return nil
}

// Read loads one persisted article.
func (s *Store) Read(id string) (*types.Article, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", id, err)
	}
	var a types.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", id, err)
	}
	return &a, nil
}

// List returns the sorted PMIDs of every persisted record.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing record store: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
