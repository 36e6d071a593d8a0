// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-harvest/internal/corpus"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

const trainingJSON = `{"questions": [
  {"id": "q1", "body": "What is X?", "type": "factoid",
   "ideal_answer": ["X is a thing.", "alternate"],
   "documents": ["http://www.ncbi.nlm.nih.gov/pubmed/100"],
   "snippets": [{"text": "X is a thing", "document": "http://www.ncbi.nlm.nih.gov/pubmed/100"}]},
  {"id": "q2", "body": "Broken", "documents": ["http://www.ncbi.nlm.nih.gov/pubmed/200"]},
  {"id": "q3", "body": "Is Y true?", "type": "yesno",
   "ideal_answer": "Yes.",
   "documents": ["http://www.ncbi.nlm.nih.gov/pubmed/200", "bogus-url"]}
]}`

const goldsetJSON = `{"questions": [
  {"id": "g1", "body": "What about Z?", "type": "summary",
   "ideal_answer": ["Z summary."],
   "documents": ["http://www.ncbi.nlm.nih.gov/pubmed/300"]}
]}`

func setupData(t *testing.T) (types.DatasetConfig, *store.Store) {
	t.Helper()
	dataDir := t.TempDir()

	st, err := store.Open(dataDir)
	require.NoError(t, err)
	for _, a := range []*types.Article{
		{ID: "100", Title: "Paper 100", Abstract: "Text 100", Journal: "Nature",
			Authors: []string{"A B"}, URL: "http://www.ncbi.nlm.nih.gov/pubmed/100"},
		{ID: "200", Title: "Paper 200", Abstract: "Text 200",
			URL: "http://www.ncbi.nlm.nih.gov/pubmed/200"},
	} {
		require.NoError(t, st.Write(a))
	}

	trainingDir := filepath.Join(dataDir, filepath.FromSlash(corpus.TrainingSubdir))
	goldsetDir := filepath.Join(dataDir, filepath.FromSlash(corpus.GoldsetSubdir))
	require.NoError(t, os.MkdirAll(trainingDir, 0o755))
	require.NoError(t, os.MkdirAll(goldsetDir, 0o755))
	trainingFile := filepath.Join(trainingDir, "training12b_new.json")
	require.NoError(t, os.WriteFile(trainingFile, []byte(trainingJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(goldsetDir, "12B1_golden.json"), []byte(goldsetJSON), 0o644))

	cfg, err := LoadManifest(dataDir)
	require.NoError(t, err)
	return cfg, st
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestBuild(t *testing.T) {
	cfg, st := setupData(t)

	counts, err := NewBuilder(cfg, st).Build()
	require.NoError(t, err)

	assert.Equal(t, Counts{Corpus: 2, Dev: 2, Test: 1}, counts)

	corpusLines := readLines(t, filepath.Join(cfg.OutputDir, "data", "corpus.jsonl"))
	require.Len(t, corpusLines, 2)
	assert.Equal(t, "100", corpusLines[0]["id"])
	assert.Equal(t, "Text 100", corpusLines[0]["text"])
	assert.Equal(t, "Nature", corpusLines[0]["journal"])

	devLines := readLines(t, filepath.Join(cfg.OutputDir, "data", "dev.jsonl"))
	require.Len(t, devLines, 2)
	// q2 lacks ideal_answer and is skipped; q1 keeps its first answer.
	assert.Equal(t, "q1", devLines[0]["question_id"])
	assert.Equal(t, "X is a thing.", devLines[0]["answer"])
	// q3's string answer and its malformed reference handling.
	assert.Equal(t, "Yes.", devLines[1]["answer"])
	assert.Equal(t, []any{"200"}, devLines[1]["relevant_passage_ids"])

	testLines := readLines(t, filepath.Join(cfg.OutputDir, "data", "test.jsonl"))
	require.Len(t, testLines, 1)
	assert.Equal(t, "g1", testLines[0]["question_id"])

	require.FileExists(t, filepath.Join(cfg.OutputDir, "dataset-info.json"))
	require.FileExists(t, filepath.Join(cfg.OutputDir, "README.md"))
}

func TestBuild_ValidatePasses(t *testing.T) {
	cfg, st := setupData(t)
	_, err := NewBuilder(cfg, st).Build()
	require.NoError(t, err)

	assert.NoError(t, Validate(cfg.OutputDir))
}

func TestValidate_MissingFile(t *testing.T) {
	assert.Error(t, Validate(t.TempDir()))
}

func TestIdealAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"plain answer"`, "plain answer"},
		{"list", `["first", "second"]`, "first"},
		{"empty list", `[]`, ""},
		{"number", `42`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idealAnswer(json.RawMessage(tt.raw)))
		})
	}
}

func TestLoadManifest_Defaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := LoadManifest(dataDir)
	require.NoError(t, err)

	assert.Equal(t, "bioasq-12b-rag-dataset", cfg.Name)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "dataset"), cfg.OutputDir)
}

func TestLoadManifest_Override(t *testing.T) {
	dataDir := t.TempDir()
	manifest := "name: custom-dataset\nversion: 2.0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, ManifestFileName), []byte(manifest), 0o644))

	cfg, err := LoadManifest(dataDir)
	require.NoError(t, err)
	assert.Equal(t, "custom-dataset", cfg.Name)
	assert.Equal(t, "2.0.0", cfg.Version)
	// Unset fields keep defaults.
	assert.Equal(t, filepath.Join(dataDir, "dataset"), cfg.OutputDir)
}
