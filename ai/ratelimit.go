package ai

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between outbound requests,
// derived from a requests-per-minute ceiling. It is a fixed-interval
// throttle, not a token bucket: bursts are flattened, never permitted.
//
// The limiter's only state is the timestamp of the last dispatched
// request. The read-compute-wait-write sequence runs as one critical
// section, so concurrent callers are serialized and can never both
// compute a stale elapsed time and under-throttle.
type RateLimiter struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewRateLimiter creates a limiter for the given requests-per-minute
// ceiling. A ceiling of zero (or less) disables waiting entirely;
// negative ceilings are rejected earlier, at config validation.
func NewRateLimiter(rpm int) *RateLimiter {
	var interval time.Duration
	if rpm > 0 {
		interval = time.Duration(float64(time.Minute) / float64(rpm))
	}
	return &RateLimiter{interval: interval}
}

// Interval returns the minimum spacing between dispatches.
// Zero means limiting is disabled.
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the minimum interval since the last dispatch has
// elapsed, then records the current time as the new dispatch timestamp.
// If the context is canceled during the wait, the timestamp is left
// untouched and the context error is returned.
//
// With limiting disabled, Wait only updates the timestamp.
func (l *RateLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d := l.deficit(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.last = time.Now()
	return nil
}

// WaitSync is the blocking form of Wait. It has no cancellation point:
// the sleep is bounded by the computed deficit, never unbounded.
func (l *RateLimiter) WaitSync() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d := l.deficit(); d > 0 {
		time.Sleep(d)
	}

	l.last = time.Now()
}

// deficit returns how much longer the caller must wait before the next
// dispatch is allowed. Callers must hold l.mu.
func (l *RateLimiter) deficit() time.Duration {
	if l.interval <= 0 || l.last.IsZero() {
		return 0
	}
	elapsed := time.Since(l.last)
	if elapsed >= l.interval {
		return 0
	}
	return l.interval - elapsed
}
