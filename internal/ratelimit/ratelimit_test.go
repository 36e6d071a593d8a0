// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_FirstCallImmediate(t *testing.T) {
	l := New(3)

	start := time.Now()
	require.NoError(t, l.Acquire(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquire_SpacesCalls(t *testing.T) {
	l := New(10) // 100ms interval

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(context.Background()))
	}
	// Third call cannot complete before two full intervals have passed.
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestAcquire_RollingWindow(t *testing.T) {
	const rate = 5
	const callers = 20

	l := New(rate)
	var mu sync.Mutex
	var completions []time.Time

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Acquire(context.Background()))
			mu.Lock()
			completions = append(completions, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, completions, callers)
	sort.Slice(completions, func(i, j int) bool { return completions[i].Before(completions[j]) })

	// No more than `rate` completions in any sliding one-second window.
	// A small allowance covers scheduling delay between a slot being
	// granted and the test recording the completion timestamp.
	const slack = 50 * time.Millisecond
	for i := 0; i+rate < len(completions); i++ {
		window := completions[i+rate].Sub(completions[i])
		assert.GreaterOrEqual(t, window, time.Second-slack,
			"completions %d..%d fell within one second", i, i+rate)
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestAcquire_ContextExpiresWhileWaiting(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
