// ABOUTME: Tests for exponential backoff calculation
// ABOUTME: Covers growth bounds, the 30 second cap, and jitter variation
package util

import (
	"testing"
	"time"
)

func TestCalculateBackoff_NonPositiveAttempts(t *testing.T) {
	for _, attempt := range []int{0, -1, -100} {
		if got := CalculateBackoff(time.Second, attempt); got != 0 {
			t.Errorf("attempt %d: want 0, got %v", attempt, got)
		}
	}
}

func TestCalculateBackoff_GrowthWithinJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond

	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		min := expected * 3 / 4
		max := expected * 5 / 4

		got := CalculateBackoff(base, attempt)
		if got < min || got > max {
			t.Errorf("attempt %d: want between %v and %v, got %v", attempt, min, max, got)
		}
	}
}

func TestCalculateBackoff_CapsAt30Seconds(t *testing.T) {
	// 2^10 seconds uncapped; the cap plus 25% jitter bounds it at 37.5s
	got := CalculateBackoff(time.Second, 10)
	if got > 37500*time.Millisecond {
		t.Errorf("want at most 37.5s, got %v", got)
	}
	if got < 22500*time.Millisecond {
		t.Errorf("want at least 22.5s after capping, got %v", got)
	}
}

func TestCalculateBackoff_HugeAttemptDoesNotOverflow(t *testing.T) {
	got := CalculateBackoff(time.Millisecond, 1000)
	if got < 0 {
		t.Errorf("backoff went negative: %v", got)
	}
	if got > 37500*time.Millisecond {
		t.Errorf("want the 30s cap to hold for huge attempts, got %v", got)
	}
}

func TestCalculateBackoff_JitterVaries(t *testing.T) {
	base := time.Second
	first := CalculateBackoff(base, 2)

	for i := 0; i < 100; i++ {
		if CalculateBackoff(base, 2) != first {
			return
		}
	}
	t.Error("100 samples of the same attempt were identical, jitter appears disabled")
}
