// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-harvest/internal/ledger"
	"github.com/pdiddy/pubmed-harvest/internal/pubmed"
	"github.com/pdiddy/pubmed-harvest/internal/store"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// fakeClient returns canned results and counts calls per identifier.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}, fail: map[string]error{}}
}

func (f *fakeClient) Fetch(ctx context.Context, id string) (*types.Article, error) {
	f.mu.Lock()
	f.calls[id]++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.fail[id]; ok {
		return nil, err
	}
	return &types.Article{ID: id, Title: "title " + id}, nil
}

func (f *fakeClient) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func newTestFetcher(t *testing.T, client RecordClient, batchSize int) (*Fetcher, string) {
	t.Helper()
	dataDir := t.TempDir()
	st, err := store.Open(dataDir)
	require.NoError(t, err)
	return New(client, st, ledger.Path(dataDir), batchSize), dataDir
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		size int
		want [][]string
	}{
		{"empty", nil, 3, nil},
		{"single batch", []string{"a", "b"}, 3, [][]string{{"a", "b"}}},
		{"exact", []string{"a", "b", "c", "d"}, 2, [][]string{{"a", "b"}, {"c", "d"}}},
		{"remainder", []string{"a", "b", "c"}, 2, [][]string{{"a", "b"}, {"c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, partition(tt.ids, tt.size))
		})
	}
}

func TestRun_AllSucceed(t *testing.T) {
	client := newFakeClient()
	f, dataDir := newTestFetcher(t, client, 2)

	summary, err := f.Run(context.Background(), []string{"100", "200", "300"})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Attempted)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Failed)

	for _, id := range []string{"100", "200", "300"} {
		assert.True(t, f.Store.Exists(id), "record %s not persisted", id)
	}
	assert.NoFileExists(t, ledger.Path(dataDir))
}

func TestRun_IdempotentResume(t *testing.T) {
	client := newFakeClient()
	f, _ := newTestFetcher(t, client, 10)

	ids := []string{"100", "200", "300"}
	_, err := f.Run(context.Background(), ids)
	require.NoError(t, err)

	// Second run over the same inputs issues zero calls for the
	// already persisted identifiers.
	summary, err := f.Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Attempted)
	assert.Equal(t, 3, summary.Skipped)
	for _, id := range ids {
		assert.Equal(t, 1, client.callCount(id), "id %s fetched more than once", id)
	}
}

func TestRun_SkippedClearsStaleEntry(t *testing.T) {
	client := newFakeClient()
	f, dataDir := newTestFetcher(t, client, 10)

	// "100" was persisted but its run crashed before the checkpoint, so
	// a stale entry remains. Skipping the fetch must still drop it.
	_, err := f.Run(context.Background(), []string{"100"})
	require.NoError(t, err)
	require.NoError(t, ledger.Save(ledger.Path(dataDir), map[string]ledger.Entry{
		"100": {Kind: "transient", Message: "HTTP 500", Attempts: 4},
	}))

	summary, err := f.Run(context.Background(), []string{"100"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, client.callCount("100"))
	assert.NoFileExists(t, ledger.Path(dataDir))
}

func TestRun_FailuresRecordedInLedger(t *testing.T) {
	client := newFakeClient()
	client.fail["300"] = &pubmed.FetchError{
		PMID: "300", Kind: pubmed.KindPermanent, Attempts: 1, Err: pubmed.ErrNoRecord,
	}
	f, dataDir := newTestFetcher(t, client, 10)

	summary, err := f.Run(context.Background(), []string{"100", "200", "300"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	require.Contains(t, summary.Failed, "300")
	assert.Equal(t, string(pubmed.KindPermanent), summary.Failed["300"].Kind)

	persisted, err := ledger.Load(ledger.Path(dataDir))
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, 1, persisted["300"].Attempts)
	assert.False(t, f.Store.Exists("300"))
}

func TestRun_SuccessClearsPriorLedgerEntry(t *testing.T) {
	client := newFakeClient()
	f, dataDir := newTestFetcher(t, client, 10)

	// A previous run left "200" in the ledger; this run succeeds, so
	// the entry must be dropped. "999" was not attempted and stays.
	require.NoError(t, ledger.Save(ledger.Path(dataDir), map[string]ledger.Entry{
		"200": {Kind: "transient", Message: "HTTP 500", Attempts: 4},
		"999": {Kind: "transient", Message: "HTTP 500", Attempts: 4},
	}))

	_, err := f.Run(context.Background(), []string{"200"})
	require.NoError(t, err)

	persisted, err := ledger.Load(ledger.Path(dataDir))
	require.NoError(t, err)
	assert.NotContains(t, persisted, "200")
	assert.Contains(t, persisted, "999")
}

func TestRun_CheckpointsPerBatch(t *testing.T) {
	client := newFakeClient()
	client.fail["b"] = &pubmed.FetchError{PMID: "b", Kind: pubmed.KindTransient, Attempts: 4, Err: errors.New("HTTP 500")}
	client.fail["d"] = &pubmed.FetchError{PMID: "d", Kind: pubmed.KindRateLimit, Attempts: 4, Err: errors.New("HTTP 429")}
	f, dataDir := newTestFetcher(t, client, 2)

	summary, err := f.Run(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Len(t, summary.Failed, 2)

	persisted, err := ledger.Load(ledger.Path(dataDir))
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
	assert.Equal(t, string(pubmed.KindRateLimit), persisted["d"].Kind)
}

func TestRun_CancellationStopsAtBatchBoundary(t *testing.T) {
	client := newFakeClient()
	f, _ := newTestFetcher(t, client, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The first batch drains (its workers observe the cancelled context
	// and report nothing), then the run stops.
	summary, err := f.Run(ctx, []string{"1", "2", "3"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, client.callCount("2"))
	assert.Equal(t, 0, client.callCount("3"))
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFileName)
	s := Summary{
		Attempted: 5,
		Succeeded: 3,
		Skipped:   1,
		Failed: map[string]ledger.Entry{
			"7": {Kind: "transient", Message: "HTTP 500", Attempts: 4},
			"3": {Kind: "permanent", Message: "no record found", Attempts: 1},
		},
	}
	require.NoError(t, WriteSummary(path, s))
	require.FileExists(t, path)
}
