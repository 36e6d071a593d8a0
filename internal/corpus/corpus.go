// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus loads BioASQ-style question files and collects the set
// of PubMed identifiers they reference.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-harvest/internal/logging"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

const (
	// TrainingSubdir and GoldsetSubdir are the corpus locations under
	// the data directory.
	TrainingSubdir = "BioASQ-12b/training"
	GoldsetSubdir  = "BioASQ-12b/goldset"
)

// ErrMalformedReference marks a document URL that does not match the
// PubMed reference pattern. Malformed references are skipped, never fatal.
var ErrMalformedReference = errors.New("malformed PubMed reference")

var pmidPattern = regexp.MustCompile(`pubmed/(\d+)/?$`)

// ExtractPMID returns the PubMed ID embedded in a reference URL, which
// is the final path segment of the .../pubmed/<digits> pattern.
func ExtractPMID(url string) (string, error) {
	m := pmidPattern.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedReference, url)
	}
	return m[1], nil
}

// LoadFile parses one question corpus file.
func LoadFile(path string) (*types.QuestionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	var qs types.QuestionSet
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", path, err)
	}
	return &qs, nil
}

// Collector gathers the deduplicated identifier set from every corpus
// file under the training and goldset directories.
type Collector struct {
	TrainingDir string
	GoldsetDir  string

	log zerolog.Logger
}

// NewCollector builds a Collector rooted at dataDir using the standard
// corpus layout.
func NewCollector(dataDir string) *Collector {
	return &Collector{
		TrainingDir: filepath.Join(dataDir, filepath.FromSlash(TrainingSubdir)),
		GoldsetDir:  filepath.Join(dataDir, filepath.FromSlash(GoldsetSubdir)),
		log:         logging.For("collector"),
	}
}

// Collect returns the union of PMIDs referenced by all corpus files,
// sorted ascending. Sorting makes the result independent of directory
// iteration order, so two runs over the same corpus batch identically.
func (c *Collector) Collect() ([]string, error) {
	files, err := c.corpusFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no corpus files found under %s or %s", c.TrainingDir, c.GoldsetDir)
	}

	seen := make(map[string]struct{})
	for _, path := range files {
		qs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		found := 0
		for _, q := range qs.Questions {
			for _, url := range q.Documents {
				pmid, err := ExtractPMID(url)
				if err != nil {
					c.log.Warn().Str("url", url).Str("question", q.ID).Msg("skipping malformed reference")
					continue
				}
				seen[pmid] = struct{}{}
				found++
			}
		}
		c.log.Info().Str("file", filepath.Base(path)).Int("references", found).Msg("processed corpus file")
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c.log.Info().Int("unique_pmids", len(ids)).Msg("collected identifier set")
	return ids, nil
}

func (c *Collector) corpusFiles() ([]string, error) {
	var files []string
	for _, dir := range []string{c.TrainingDir, c.GoldsetDir} {
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("listing corpus files in %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// SaveIDs writes the identifier set to an advisory text file, one PMID
// per line. Downstream stages do not depend on this file.
func SaveIDs(ids []string, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
