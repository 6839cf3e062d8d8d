// Package retry holds the backoff policy used by the resilient fetcher.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config defines the retry budget and backoff curve for a fetch.
type Config struct {
	MaxAttempts int           // total attempts before giving up
	BaseDelay   time.Duration // delay before the second attempt
	MaxDelay    time.Duration // cap on any single backoff
	Multiplier  float64       // exponential growth factor
	JitterMax   time.Duration // bound on the random additive jitter
}

// DefaultConfig returns the fetcher's default policy: five attempts with
// exponential backoff from 500ms, jittered so concurrent retries do not
// synchronize against the target.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
		JitterMax:   1 * time.Second,
	}
}

// Backoff computes the delay to sleep after the given zero-based attempt:
// BaseDelay * Multiplier^attempt, capped at MaxDelay, plus a random
// additive term bounded by JitterMax.
func (c Config) Backoff(attempt int) time.Duration {
	d := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt))
	if d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}

	backoff := time.Duration(d)
	if c.JitterMax > 0 {
		backoff += time.Duration(rand.Int63n(int64(c.JitterMax)))
	}
	return backoff
}

// Sleep waits for d or until the context is cancelled, whichever is first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
