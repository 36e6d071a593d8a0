// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists the set of identifiers whose fetch failed,
// keyed by PMID, so a later run can retry exactly the outstanding work.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the ledger location under the data directory. Absence of
// the file signals that no failures are outstanding.
const FileName = "failed_pmids.json"

// Entry records the terminal failure for one identifier.
type Entry struct {
	// Kind is the failure classification (transient, rate_limit,
	// permanent).
	Kind string `json:"kind"`

	// Message is the terminal error text.
	Message string `json:"message"`

	// Attempts is how many times the identifier was tried in the run
	// that recorded the failure.
	Attempts int `json:"attempts"`
}

// Path returns the ledger file path under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads the ledger. A missing file is an empty ledger, not an
// error.
func Load(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	var m map[string]Entry
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing ledger %s: %w", path, err)
	}
	if m == nil {
		m = map[string]Entry{}
	}
	return m, nil
}

// Save writes the ledger atomically (temp file + rename). An empty
// ledger removes the file instead, because a resumed run probes the
// file's existence to decide whether retry work remains.
func Save(path string, m map[string]Entry) error {
	if len(m) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing empty ledger %s: %w", path, err)
		}
		return nil
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing ledger: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp ledger: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming ledger: %w", err)
	}
	return nil
}

// Merge combines the previous ledger with one run's outcome:
// result = (prev − successes − failures) ∪ failures. Successes drop any
// prior entry for the same identifier; failures replace prior entries.
// Merge is idempotent for fixed arguments.
func Merge(prev, failures map[string]Entry, successes []string) map[string]Entry {
	out := make(map[string]Entry, len(prev)+len(failures))
	for id, e := range prev {
		out[id] = e
	}
	for _, id := range successes {
		delete(out, id)
	}
	for id, e := range failures {
		out[id] = e
	}
	return out
}
