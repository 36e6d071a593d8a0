// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/catalog"
	"github.com/pdiddy/pubmed-harvest/internal/corpus"
	"github.com/pdiddy/pubmed-harvest/internal/fetch"
	"github.com/pdiddy/pubmed-harvest/internal/ledger"
	"github.com/pdiddy/pubmed-harvest/internal/logging"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/ratelimit"
	"github.com/pdiddy/pubmed-harvest/internal/secrets"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "pubmed-harvest/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch metadata for every identifier referenced by the corpus",
	Long: `Fetch collects the identifier set from the question corpus and
downloads each record from NCBI E-utilities. Records already on disk are
skipped, so an interrupted run resumes where it stopped. Failures are
written to the ledger for later retry; they do not fail the run.

NCBI allows 3 requests per second without an API key and 10 with one;
--rate-limit 0 picks the ceiling matching the credential in use.`,
	RunE: runFetch,
}

func init() {
	addFetchFlags(fetchCmd, 100, 0, 3, 5*time.Second)
	rootCmd.AddCommand(fetchCmd)
}

// addFetchFlags registers the flags shared by fetch and retry, with
// per-command defaults. Retry pins rateLimit to the anonymous ceiling
// instead of the credential default; fetch passes 0.
func addFetchFlags(cmd *cobra.Command, batchSize, rateLimit, maxRetries int, retryDelay time.Duration) {
	cmd.Flags().String("email", "", "email identifying the caller to NCBI (required unless in .secrets/)")
	cmd.Flags().String("api-key", "", "NCBI API key for the higher rate ceiling")
	cmd.Flags().Int("batch-size", batchSize, "identifiers per checkpointed batch")
	cmd.Flags().Int("rate-limit", rateLimit, "max requests per second (0 = NCBI default for the credential)")
	cmd.Flags().Int("max-retries", maxRetries, "retries after the first attempt for transient failures")
	cmd.Flags().Duration("retry-delay", retryDelay, "base backoff delay between retries")
	cmd.Flags().Duration("timeout", defaultTimeout, "per-attempt HTTP timeout")
}

// fetchConfigFromFlags resolves the fetch configuration from flags and
// loaded secrets.
func fetchConfigFromFlags(cmd *cobra.Command) (types.FetchConfig, error) {
	email, _ := cmd.Flags().GetString("email")
	apiKey, _ := cmd.Flags().GetString("api-key")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	rateLimit, _ := cmd.Flags().GetInt("rate-limit")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	retryDelay, _ := cmd.Flags().GetDuration("retry-delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		Email:      secrets.Resolve(loadedSecrets, secrets.KeyEmail, email),
		APIKey:     secrets.Resolve(loadedSecrets, secrets.KeyAPIKey, apiKey),
		DataDir:    dataDir(),
		BatchSize:  batchSize,
		RateLimit:  rateLimit,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}
	if cfg.Email == "" {
		return cfg, fmt.Errorf("an email is required by NCBI: pass --email or add %s to %s",
			secrets.KeyEmail, secrets.DefaultDir)
	}
	return cfg, nil
}

// runHarvest wires the fetch pipeline and processes ids. Shared by the
// fetch and retry commands; they differ only in where ids come from and
// in flag defaults.
func runHarvest(cfg types.FetchConfig, ids []string) (fetch.Summary, error) {
	log := logging.For("cli")

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fetch.Summary{}, err
	}

	limiter := ratelimit.New(cfg.EffectiveRate())
	client := pubmed.NewClient(cfg, limiter)
	f := fetch.New(client, st, ledger.Path(cfg.DataDir), cfg.BatchSize)

	cat, err := catalog.Open(cfg.DataDir)
	if err != nil {
		log.Warn().Err(err).Msg("catalog unavailable, continuing without inventory")
	} else {
		f.Catalog = cat
		defer cat.Close()
	}

	log.Info().
		Str("email", cfg.Email).
		Bool("api_key", cfg.APIKey != "").
		Int("rate_limit", cfg.EffectiveRate()).
		Int("batch_size", cfg.BatchSize).
		Int("max_retries", cfg.MaxRetries).
		Msg("starting harvest")

	// SIGINT/SIGTERM stop the run at the next batch boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := f.Run(ctx, ids)
	if err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}

	if werr := fetch.WriteSummary(filepath.Join(cfg.DataDir, fetch.SummaryFileName), summary); werr != nil {
		log.Warn().Err(werr).Msg("could not write run summary")
	}
	return summary, nil
}

func printSummary(s fetch.Summary) {
	fmt.Printf("\nHarvest complete: %d succeeded, %d failed, %d skipped (already present)\n",
		s.Succeeded, len(s.Failed), s.Skipped)
	if len(s.Failed) > 0 {
		fmt.Printf("Failed identifiers recorded in the ledger; run 'pubmed-harvest retry' to reattempt them.\n")
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	// Corpus load failure is the one fatal input error.
	ids, err := corpus.NewCollector(cfg.DataDir).Collect()
	if err != nil {
		return err
	}

	summary, err := runHarvest(cfg, ids)
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}
