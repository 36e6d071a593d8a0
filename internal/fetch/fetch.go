// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch orchestrates the bulk retrieval run: it skips already
// persisted identifiers, processes the rest in fixed-size batches with
// one worker per identifier, and checkpoints the failure ledger after
// every batch so an interrupted run resumes without losing work.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-harvest/internal/catalog"
	"github.com/pdiddy/pubmed-harvest/internal/ledger"
	"github.com/pdiddy/pubmed-harvest/internal/logging"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// RecordClient fetches one record per identifier. Satisfied by
// *pubmed.Client; tests substitute fakes.
type RecordClient interface {
	Fetch(ctx context.Context, pmid string) (*types.Article, error)
}

// Fetcher runs the batched download.
type Fetcher struct {
	Client     RecordClient
	Store      *store.Store
	LedgerPath string

	// Catalog is optional; when set, successes are also recorded in the
	// inventory database.
	Catalog *catalog.Catalog

	// BatchSize bounds both checkpoint granularity and concurrent
	// in-flight requests.
	BatchSize int

	log zerolog.Logger
}

// New builds a Fetcher.
func New(client RecordClient, st *store.Store, ledgerPath string, batchSize int) *Fetcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Fetcher{
		Client:     client,
		Store:      st,
		LedgerPath: ledgerPath,
		BatchSize:  batchSize,
		log:        logging.For("fetch"),
	}
}

// Summary is the terminal report of one run.
type Summary struct {
	// Attempted counts identifiers dispatched this run (pending only,
	// not skipped).
	Attempted int

	// Succeeded counts newly persisted records.
	Succeeded int

	// Skipped counts identifiers already persisted before the run.
	Skipped int

	// Failed maps each failed identifier to its ledger entry.
	Failed map[string]ledger.Entry
}

// Run fetches every identifier not yet persisted. Per-identifier
// failures land in the ledger and the summary; only local persistence
// errors (store or ledger IO) abort the run, because a broken store
// voids the resumability guarantee. Cancellation is honored at batch
// boundaries: the current batch drains, its checkpoint is written, and
// Run returns ctx.Err() with the partial summary.
func (f *Fetcher) Run(ctx context.Context, ids []string) (Summary, error) {
	summary := Summary{Failed: map[string]ledger.Entry{}}

	var pending, skipped []string
	for _, id := range ids {
		if f.Store.Exists(id) {
			f.log.Debug().Str("pmid", id).Msg("already persisted, skipping")
			skipped = append(skipped, id)
			continue
		}
		pending = append(pending, id)
	}
	summary.Skipped = len(skipped)

	// A persisted record supersedes any stale ledger entry for the same
	// identifier (possible after a crash between a record write and its
	// batch checkpoint), so skipped identifiers are folded in as
	// successes up front.
	if len(skipped) > 0 {
		if err := f.checkpoint(nil, skipped); err != nil {
			return summary, err
		}
	}

	f.log.Info().
		Int("total", len(ids)).
		Int("pending", len(pending)).
		Int("skipped", summary.Skipped).
		Int("batch_size", f.BatchSize).
		Msg("starting bulk fetch")

	batches := partition(pending, f.BatchSize)
	for i, batch := range batches {
		f.log.Info().Int("batch", i+1).Int("batches", len(batches)).Int("size", len(batch)).Msg("processing batch")

		successes, failures, err := f.runBatch(ctx, batch)

		summary.Attempted += len(successes) + len(failures)
		summary.Succeeded += len(successes)
		for id, e := range failures {
			summary.Failed[id] = e
		}

		// Checkpoint before surfacing any error so the ledger reflects
		// every batch that ran.
		if ckErr := f.checkpoint(failures, successes); ckErr != nil {
			return summary, ckErr
		}
		if err != nil {
			return summary, err
		}

		if ctx.Err() != nil {
			f.log.Warn().Int("batches_done", i+1).Msg("cancelled, stopping at batch boundary")
			return summary, ctx.Err()
		}

		f.log.Info().
			Int("succeeded", len(successes)).
			Int("failed", len(failures)).
			Int("progress", summary.Succeeded).
			Int("pending_total", len(pending)).
			Msg("batch complete")
	}

	return summary, nil
}

// runBatch dispatches one goroutine per identifier and waits for all of
// them. Within a batch completion order is unconstrained; the WaitGroup
// is the synchronization barrier required before the checkpoint.
func (f *Fetcher) runBatch(ctx context.Context, batch []string) ([]string, map[string]ledger.Entry, error) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		successes []string
		failures  = map[string]ledger.Entry{}
		fatal     error
	)

	for _, id := range batch {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			article, err := f.Client.Fetch(ctx, id)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					// Not a verdict on the identifier; it stays pending
					// for the next run.
					return
				}
				mu.Lock()
				failures[id] = entryFor(id, err)
				mu.Unlock()
				f.log.Error().Str("pmid", id).Err(err).Msg("fetch failed")
				return
			}

			if err := f.Store.Write(article); err != nil {
				mu.Lock()
				if fatal == nil {
					fatal = fmt.Errorf("persisting record: %w", err)
				}
				mu.Unlock()
				return
			}
			if f.Catalog != nil {
				if err := f.Catalog.Upsert(ctx, article); err != nil {
					f.log.Warn().Str("pmid", id).Err(err).Msg("catalog update failed")
				}
			}

			mu.Lock()
			successes = append(successes, id)
			mu.Unlock()
			f.log.Debug().Str("pmid", id).Msg("fetched and persisted")
		}(id)
	}
	wg.Wait()

	sort.Strings(successes)
	return successes, failures, fatal
}

// checkpoint folds one batch's outcome into the durable ledger.
func (f *Fetcher) checkpoint(failures map[string]ledger.Entry, successes []string) error {
	prev, err := ledger.Load(f.LedgerPath)
	if err != nil {
		return err
	}
	merged := ledger.Merge(prev, failures, successes)
	if err := ledger.Save(f.LedgerPath, merged); err != nil {
		return err
	}
	return nil
}

// entryFor converts a terminal fetch error into its ledger entry.
func entryFor(id string, err error) ledger.Entry {
	if fe, ok := pubmed.AsFetchError(err); ok {
		return ledger.Entry{Kind: string(fe.Kind), Message: fe.Err.Error(), Attempts: fe.Attempts}
	}
	return ledger.Entry{Kind: string(pubmed.KindTransient), Message: err.Error(), Attempts: 1}
}

// partition splits ids into consecutive slices of at most size,
// preserving order.
func partition(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
