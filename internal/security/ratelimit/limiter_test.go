package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("user:1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user:1") {
		t.Fatalf("request over budget should be refused")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("user:1") {
		t.Fatalf("first request for user:1 should be allowed")
	}
	if !l.Allow("user:2") {
		t.Fatalf("first request for user:2 should be allowed")
	}
	if l.Allow("user:1") {
		t.Fatalf("second request for user:1 should be refused")
	}
}

func TestWindowSlides(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("user:1") {
		t.Fatalf("first request should be allowed")
	}
	if l.Allow("user:1") {
		t.Fatalf("second immediate request should be refused")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("user:1") {
		t.Fatalf("request after the window should be allowed")
	}
}
