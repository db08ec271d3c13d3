package votes

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("Expected burst of 2 to be allowed")
	}
	if l.Allow("a") {
		t.Error("Expected third request to be limited")
	}
	if !l.Allow("b") {
		t.Error("Expected other client to be allowed")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Error("Expected a token after one second")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(5 * time.Minute)
	l.Allow("new")

	if n := l.Cleanup(3 * time.Minute); n != 1 {
		t.Errorf("Expected 1 removed visitor, got %d", n)
	}
	if _, ok := l.visitors["new"]; !ok {
		t.Error("Expected recent visitor to be kept")
	}
}
