package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("expected first two requests to pass")
	}
	if rl.Allow("a") {
		t.Fatalf("expected third request to be limited")
	}
	// Other keys are independent.
	if !rl.Allow("b") {
		t.Fatalf("expected separate key to pass")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	if !rl.Allow("a") {
		t.Fatalf("expected first request to pass")
	}
	if rl.Allow("a") {
		t.Fatalf("expected second request to be limited")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatalf("expected request after window reset to pass")
	}
}
