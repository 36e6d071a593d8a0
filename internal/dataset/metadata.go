// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type datasetInfo struct {
	Name        string               `json:"name"`
	Version     string               `json:"version"`
	Description string               `json:"description"`
	Splits      map[string]splitInfo `json:"splits"`
	Features    map[string][]string  `json:"features"`
}

type splitInfo struct {
	NumExamples int    `json:"num_examples"`
	File        string `json:"file"`
}

// writeMetadata writes dataset-info.json describing the splits.
func (b *Builder) writeMetadata(counts Counts) error {
	info := datasetInfo{
		Name:        b.Config.Name,
		Version:     b.Config.Version,
		Description: "BioASQ 12B dataset processed for RAG applications",
		Splits: map[string]splitInfo{
			"corpus": {NumExamples: counts.Corpus, File: "data/corpus.jsonl"},
			"dev":    {NumExamples: counts.Dev, File: "data/dev.jsonl"},
			"test":   {NumExamples: counts.Test, File: "data/test.jsonl"},
		},
		Features: map[string][]string{
			"corpus": {"id", "title", "text", "url", "publication_date",
				"journal", "authors", "doi", "keywords", "mesh_terms"},
			"questions": {"question_id", "question", "answer",
				"relevant_passage_ids", "type", "snippets"},
		},
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dataset info: %w", err)
	}
	path := filepath.Join(b.Config.OutputDir, "dataset-info.json")
	return os.WriteFile(path, data, 0o644)
}

const readmeText = `# BioASQ 12B RAG Dataset

A processed version of the BioASQ 12B dataset for Retrieval-Augmented
Generation (RAG) applications in biomedical question answering.

## Structure

- data/corpus.jsonl — PubMed abstracts with metadata, one JSON object
  per line: id, title, text, url, publication_date, journal, authors,
  doi, keywords, mesh_terms.
- data/dev.jsonl — development questions: question_id, question, answer,
  relevant_passage_ids, type, snippets.
- data/test.jsonl — test questions, same structure as dev.

## Source

Derived from the BioASQ Challenge task 12b dataset; the corpus follows
the original BioASQ data license.
`

// writeReadme writes the dataset README.
func writeReadme(outputDir string) error {
	return os.WriteFile(filepath.Join(outputDir, "README.md"), []byte(readmeText), 0o644)
}

// Validate checks that every required dataset file exists and that each
// JSONL file starts with a parseable line. Structural well-formedness
// only; content is not inspected.
func Validate(dir string) error {
	required := []string{
		"data/corpus.jsonl",
		"data/dev.jsonl",
		"data/test.jsonl",
		"dataset-info.json",
		"README.md",
	}
	for _, rel := range required {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return fmt.Errorf("missing required dataset file %s: %w", rel, err)
		}
	}

	for _, rel := range []string{"data/corpus.jsonl", "data/dev.jsonl", "data/test.jsonl"} {
		if err := validateJSONL(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return fmt.Errorf("validating %s: %w", rel, err)
		}
	}
	return nil
}

func validateJSONL(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !scanner.Scan() {
		// An empty split is structurally fine; there is just nothing to
		// check.
		return scanner.Err()
	}

	var v json.RawMessage
	if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
		return fmt.Errorf("first line is not valid JSON: %w", err)
	}
	return nil
}
