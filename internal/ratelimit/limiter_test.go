package ratelimit

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter[int64](2, time.Minute)
	rl.now = func() time.Time { return current }

	if !rl.IsAllowed(1) || !rl.IsAllowed(1) {
		t.Fatalf("expected first two requests to pass")
	}
	if rl.IsAllowed(1) {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.IsAllowed(2) {
		t.Fatalf("expected other keys to be independent")
	}

	current = current.Add(time.Minute)
	if !rl.IsAllowed(1) {
		t.Fatalf("expected request after the window to pass")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter[string](0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.IsAllowed("client") {
			t.Fatalf("expected unlimited requests")
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter[string](5, time.Minute)
	rl.now = func() time.Time { return current }

	rl.IsAllowed("a")
	current = current.Add(2 * time.Minute)
	rl.IsAllowed("b")
	rl.Cleanup()

	if _, ok := rl.requests["a"]; ok {
		t.Fatalf("expected stale key to be removed")
	}
	if _, ok := rl.requests["b"]; !ok {
		t.Fatalf("expected active key to stay")
	}
}
