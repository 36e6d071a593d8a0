// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/catalog"
	"github.com/pdiddy/pubmed-harvest/internal/ledger"
	"github.com/pdiddy/pubmed-harvest/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report harvest progress and outstanding failures",
	Long: `Status reports how many records are persisted, how many identifiers
remain in the failure ledger, and inventory breakdowns by journal and
publication year from the catalog.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Int("top", 10, "number of journals to list")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := dataDir()
	ctx := context.Background()

	st, err := store.Open(dir)
	if err != nil {
		return err
	}
	ids, err := st.List()
	if err != nil {
		return err
	}
	fmt.Printf("Persisted records: %d\n", len(ids))

	entries, err := ledger.Load(ledger.Path(dir))
	if err != nil {
		return err
	}
	fmt.Printf("Outstanding failures: %d\n", len(entries))
	if len(entries) > 0 {
		failed := make([]string, 0, len(entries))
		for id := range entries {
			failed = append(failed, id)
		}
		sort.Strings(failed)
		for _, id := range failed {
			e := entries[id]
			fmt.Printf("  %s  %-10s %d attempt(s)  %s\n", id, e.Kind, e.Attempts, e.Message)
		}
	}

	cat, err := catalog.Open(dir)
	if err != nil {
		// The file store already answered the essential questions.
		fmt.Println("Catalog unavailable; skipping breakdowns.")
		return nil
	}
	defer cat.Close()

	top, _ := cmd.Flags().GetInt("top")
	journals, err := cat.ByJournal(ctx, top)
	if err != nil {
		return err
	}
	if len(journals) > 0 {
		fmt.Println("\nTop journals:")
		for _, j := range journals {
			fmt.Printf("  %6d  %s\n", j.Count, j.Key)
		}
	}

	years, err := cat.ByYear(ctx)
	if err != nil {
		return err
	}
	if len(years) > 0 {
		fmt.Println("\nBy publication year:")
		for _, y := range years {
			fmt.Printf("  %s  %d\n", y.Key, y.Count)
		}
	}
	return nil
}
