// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset assembles the fetched record store and the question
// corpus into the line-delimited dataset layout used for RAG
// benchmarking: data/corpus.jsonl, data/dev.jsonl, data/test.jsonl plus
// dataset-info.json and a README.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-harvest/internal/corpus"
	"github.com/pdiddy/pubmed-harvest/internal/logging"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// ManifestFileName is the optional assembly manifest under the data
// directory.
const ManifestFileName = "dataset.yaml"

// LoadManifest reads the assembly manifest, filling defaults for absent
// fields. A missing manifest file yields the pure defaults.
func LoadManifest(dataDir string) (types.DatasetConfig, error) {
	cfg := types.DatasetConfig{
		Name:         "bioasq-12b-rag-dataset",
		Version:      "1.0.0",
		DataDir:      dataDir,
		TrainingFile: filepath.Join(dataDir, filepath.FromSlash(corpus.TrainingSubdir), "training12b_new.json"),
		GoldsetDir:   filepath.Join(dataDir, filepath.FromSlash(corpus.GoldsetSubdir)),
		OutputDir:    filepath.Join(dataDir, "dataset"),
	}

	data, err := os.ReadFile(filepath.Join(dataDir, ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing manifest: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// corpusEntry is one line of corpus.jsonl.
type corpusEntry struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Text            string   `json:"text"`
	URL             string   `json:"url"`
	PublicationDate string   `json:"publication_date"`
	Journal         string   `json:"journal"`
	Authors         []string `json:"authors"`
	DOI             string   `json:"doi,omitempty"`
	Keywords        []string `json:"keywords"`
	MeshTerms       []string `json:"mesh_terms"`
}

// questionEntry is one line of dev.jsonl / test.jsonl.
type questionEntry struct {
	QuestionID         string            `json:"question_id"`
	Question           string            `json:"question"`
	Answer             string            `json:"answer"`
	RelevantPassageIDs []string          `json:"relevant_passage_ids"`
	Type               string            `json:"type"`
	Snippets           []json.RawMessage `json:"snippets"`
}

// Builder assembles the dataset.
type Builder struct {
	Config types.DatasetConfig
	Store  *store.Store

	log zerolog.Logger
}

// NewBuilder returns a Builder over the given record store.
func NewBuilder(cfg types.DatasetConfig, st *store.Store) *Builder {
	return &Builder{Config: cfg, Store: st, log: logging.For("dataset")}
}

// Counts reports how many lines each split received.
type Counts struct {
	Corpus int
	Dev    int
	Test   int
}

// Build writes all dataset files and validates the result.
func (b *Builder) Build() (Counts, error) {
	var counts Counts

	dataOut := filepath.Join(b.Config.OutputDir, "data")
	if err := os.MkdirAll(dataOut, 0o755); err != nil {
		return counts, fmt.Errorf("creating output directory: %w", err)
	}

	n, err := b.buildCorpus(filepath.Join(dataOut, "corpus.jsonl"))
	if err != nil {
		return counts, err
	}
	counts.Corpus = n

	dev, test, err := b.buildQuestions(
		filepath.Join(dataOut, "dev.jsonl"),
		filepath.Join(dataOut, "test.jsonl"))
	if err != nil {
		return counts, err
	}
	counts.Dev, counts.Test = dev, test

	if err := b.writeMetadata(counts); err != nil {
		return counts, err
	}
	if err := writeReadme(b.Config.OutputDir); err != nil {
		return counts, err
	}
	if err := Validate(b.Config.OutputDir); err != nil {
		return counts, err
	}

	b.log.Info().
		Int("corpus", counts.Corpus).
		Int("dev", counts.Dev).
		Int("test", counts.Test).
		Str("output", b.Config.OutputDir).
		Msg("dataset assembled")
	return counts, nil
}

// buildCorpus converts every stored record into one corpus.jsonl line.
func (b *Builder) buildCorpus(outPath string) (int, error) {
	ids, err := b.Store.List()
	if err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	count := 0
	for _, id := range ids {
		a, err := b.Store.Read(id)
		if err != nil {
			b.log.Warn().Str("pmid", id).Err(err).Msg("skipping unreadable record")
			continue
		}
		entry := corpusEntry{
			ID:              a.ID,
			Title:           a.Title,
			Text:            a.Abstract,
			URL:             a.URL,
			PublicationDate: a.PublicationDate,
			Journal:         a.Journal,
			Authors:         emptyIfNil(a.Authors),
			DOI:             a.DOI,
			Keywords:        emptyIfNil(a.Keywords),
			MeshTerms:       emptyIfNil(a.MeshTerms),
		}
		if err := enc.Encode(entry); err != nil {
			return count, fmt.Errorf("writing corpus entry %s: %w", id, err)
		}
		count++
	}
	if err := w.Flush(); err != nil {
		return count, fmt.Errorf("flushing %s: %w", outPath, err)
	}
	return count, nil
}

// buildQuestions writes the dev split from the training file and the
// test split from every goldset file.
func (b *Builder) buildQuestions(devOut, testOut string) (int, int, error) {
	dev, err := b.questionsFromFiles([]string{b.Config.TrainingFile})
	if err != nil {
		return 0, 0, err
	}

	goldFiles, err := filepath.Glob(filepath.Join(b.Config.GoldsetDir, "*.json"))
	if err != nil {
		return 0, 0, fmt.Errorf("listing goldset files: %w", err)
	}
	test, err := b.questionsFromFiles(goldFiles)
	if err != nil {
		return 0, 0, err
	}

	if err := writeJSONL(devOut, dev); err != nil {
		return 0, 0, err
	}
	if err := writeJSONL(testOut, test); err != nil {
		return 0, 0, err
	}
	return len(dev), len(test), nil
}

func (b *Builder) questionsFromFiles(paths []string) ([]questionEntry, error) {
	var entries []questionEntry
	for _, path := range paths {
		qs, err := corpus.LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, q := range qs.Questions {
			entry, ok := b.processQuestion(q)
			if !ok {
				continue
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// processQuestion converts one corpus question, reporting false when a
// required field is missing.
func (b *Builder) processQuestion(q types.Question) (questionEntry, bool) {
	if q.ID == "" || q.Body == "" || q.Documents == nil || len(q.IdealAnswer) == 0 {
		b.log.Warn().Str("question", q.ID).Msg("skipping question with missing required fields")
		return questionEntry{}, false
	}

	var ids []string
	for _, url := range q.Documents {
		pmid, err := corpus.ExtractPMID(url)
		if err != nil {
			b.log.Warn().Str("url", url).Str("question", q.ID).Msg("skipping malformed reference")
			continue
		}
		ids = append(ids, pmid)
	}

	snippets := q.Snippets
	if snippets == nil {
		snippets = []json.RawMessage{}
	}

	return questionEntry{
		QuestionID:         q.ID,
		Question:           q.Body,
		Answer:             idealAnswer(q.IdealAnswer),
		RelevantPassageIDs: emptyIfNil(ids),
		Type:               q.Type,
		Snippets:           snippets,
	}, true
}

// idealAnswer normalizes the corpus ideal_answer field, which is either
// a string or a list of strings; lists collapse to their first element.
func idealAnswer(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSONL[T any](path string, entries []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return w.Flush()
}
