// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/dataset"
	"github.com/pdiddy/pubmed-harvest/internal/store"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the fetched records and questions into dataset files",
	Long: `Assemble reads the record store and the question corpus and writes the
line-delimited dataset: data/corpus.jsonl, data/dev.jsonl (training
questions), data/test.jsonl (goldset questions), dataset-info.json, and a
README. An optional <data-dir>/dataset.yaml manifest overrides the dataset
name, version, input paths, and output directory.`,
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().String("output-dir", "", "output directory (default <data-dir>/dataset)")

	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	dir := dataDir()

	cfg, err := dataset.LoadManifest(dir)
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("output-dir"); out != "" {
		cfg.OutputDir = out
	}

	st, err := store.Open(dir)
	if err != nil {
		return err
	}

	counts, err := dataset.NewBuilder(cfg, st).Build()
	if err != nil {
		return err
	}

	fmt.Printf("Dataset assembled at %s: %d corpus, %d dev, %d test entries\n",
		cfg.OutputDir, counts.Corpus, counts.Dev, counts.Test)
	return nil
}
