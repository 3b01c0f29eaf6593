// Package retry provides exponential backoff with jitter for network calls
// that may fail transiently (object listings, manifest reads and writes).
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

const (
	DefaultBaseDelay   = 300 * time.Millisecond
	DefaultMaxDelay    = 4 * time.Second
	DefaultMaxAttempts = 3

	// jitterFraction bounds the random extra delay relative to the capped delay.
	jitterFraction = 0.3
)

// randFloat returns a value in [0, 1). Overridden in tests.
var randFloat = rand.Float64

// ComputeBackoffDelay returns the delay to wait after the given failed attempt.
// Attempts are 1-based: attempt 1 yields base, attempt 2 yields 2*base and so on,
// capped at maxDelay. Jitter drawn uniformly from [0, 0.3*delay) is then added and the
// result is floored to whole milliseconds.
func ComputeBackoffDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	baseMs := float64(base.Milliseconds())
	maxMs := float64(maxDelay.Milliseconds())

	delay := baseMs * math.Pow(2, float64(attempt-1))
	if delay > maxMs || math.IsInf(delay, 1) {
		delay = maxMs
	}
	if delay < 0 {
		delay = 0
	}

	jitter := randFloat() * jitterFraction * delay
	return time.Duration(math.Floor(delay+jitter)) * time.Millisecond
}

// Sleep blocks the calling goroutine for at least d. It cannot be cancelled;
// use SleepContext when the caller needs to abort early.
func Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-time.After(d)
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
