package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter paces operations to a target rate with optional jitter. Each call
// to Wait reserves the next slot, so concurrent callers are spaced out
// rather than released in bursts. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
	next     time.Time
}

// NewLimiter creates a limiter allowing rps operations per second. Jitter
// spreads each gap by up to +/- jitter*interval. If rps is <= 0, the
// limiter never blocks.
func NewLimiter(rps float64, jitter float64) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}

	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}

	return &Limiter{
		interval: time.Duration(float64(time.Second) / rps),
		jitter:   jitter,
	}
}

// Wait blocks until the caller's reserved slot arrives or the context is
// canceled. The first call on a fresh limiter does not block.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.interval == 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	wait := l.next.Sub(now)
	if wait < 0 {
		wait = 0
	}

	gap := l.interval
	if l.jitter > 0 {
		spread := (rand.Float64()*2 - 1) * l.jitter
		gap += time.Duration(float64(l.interval) * spread)
	}
	l.next = now.Add(wait).Add(gap)
	l.mu.Unlock()

	if wait == 0 {
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
