// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit paces outbound requests so the aggregate rate across
// all workers stays under the NCBI ceiling.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token-paced gate shared by every fetch worker in the
// process. Each Acquire reserves the next issuance slot under a mutex,
// so slots are handed out in arrival order and spaced at least one
// interval apart regardless of how many goroutines contend.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// New returns a Limiter allowing at most perSecond acquisitions in any
// rolling one-second window. Values below 1 are treated as 1.
func New(perSecond int) *Limiter {
	if perSecond < 1 {
		perSecond = 1
	}
	return &Limiter{interval: time.Second / time.Duration(perSecond)}
}

// Acquire blocks until issuing one more request keeps the aggregate
// rate within the limit, or until ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := time.Now()
	at := l.next
	if at.Before(now) {
		at = now
	}
	l.next = at.Add(l.interval)
	l.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
