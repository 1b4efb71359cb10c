// ABOUTME: Exponential backoff with jitter for retried API calls
// ABOUTME: Shared by the draft composer so retry pacing stays consistent
package util

import (
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns the delay before the given retry attempt.
// The base delay doubles each attempt and is capped at 30 seconds,
// then randomized by up to 25% in either direction so concurrent
// callers do not retry in lockstep.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Shifting past 30 would overflow; the cap below makes larger
	// attempts equivalent anyway
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
