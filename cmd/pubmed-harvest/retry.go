// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/ledger"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry identifiers recorded in the failure ledger",
	Long: `Retry reprocesses exactly the identifiers in the failure ledger with
more conservative defaults: smaller batches, the anonymous rate ceiling,
more retries, and a longer backoff. Identifiers that succeed are removed
from the ledger; when everything succeeds the ledger file is deleted.`,
	RunE: runRetry,
}

func init() {
	addFetchFlags(retryCmd, 10, types.RateLimitAnonymous, 5, 10*time.Second)
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	cfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	entries, err := ledger.Load(ledger.Path(cfg.DataDir))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No failed identifiers to retry.")
		return nil
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("Retrying %d failed identifier(s)\n", len(ids))

	summary, err := runHarvest(cfg, ids)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}
