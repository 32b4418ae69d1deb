package googlefit

import (
	"context"
	"sync"
	"time"
)

// Default pacing for Fitness API calls, well under the per-user quota
const (
	DefaultRequestsPerMinute = 60
	DefaultMinInterval       = 250 * time.Millisecond
)

// RateLimiter paces aggregate queries: at most limit requests per window and
// at least minInterval between two of them
type RateLimiter struct {
	mu sync.Mutex

	limit    int
	window   time.Duration
	usage    int
	resetsAt time.Time

	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window, minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		resetsAt:    time.Now().Add(window),
		minInterval: minInterval,
	}
}

// NewDefaultRateLimiter uses DefaultRequestsPerMinute and DefaultMinInterval
func NewDefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(DefaultRequestsPerMinute, time.Minute, DefaultMinInterval)
}

// Wait blocks until a request can be made without exceeding the limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Reset the window if expired
	if now.After(r.resetsAt) {
		r.usage = 0
		r.resetsAt = now.Add(r.window)
	}

	if r.usage >= r.limit {
		if err := r.sleep(ctx, time.Until(r.resetsAt)); err != nil {
			return err
		}
		r.usage = 0
		r.resetsAt = time.Now().Add(r.window)
	}

	// Enforce minimum interval between requests
	if elapsed := time.Since(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.usage++
	r.lastRequest = time.Now()

	return nil
}

// sleep waits d with the lock released
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Remaining returns how many requests are left in the current window
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Now().After(r.resetsAt) {
		return r.limit
	}
	return r.limit - r.usage
}
