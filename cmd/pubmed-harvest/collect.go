// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/corpus"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the unique PubMed identifiers referenced by the corpus",
	Long: `Collect scans every question file under the training and goldset
directories, extracts the PubMed ID from each document reference URL, and
writes the deduplicated set to <data-dir>/unique_pmids.txt.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("output", "", "output file (default <data-dir>/unique_pmids.txt)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	dir := dataDir()

	ids, err := corpus.NewCollector(dir).Collect()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = filepath.Join(dir, "unique_pmids.txt")
	}
	if err := corpus.SaveIDs(ids, out); err != nil {
		return err
	}

	fmt.Printf("Collected %d unique PMIDs to %s\n", len(ids), out)
	return nil
}
