package handler

import (
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	if _, ok := rl.visitors.Load("10.0.0.1"); !ok {
		t.Fatal("visitor not tracked after first request")
	}

	rl.evictIdle(-time.Second)
	if _, ok := rl.visitors.Load("10.0.0.1"); ok {
		t.Fatal("idle visitor survived eviction")
	}
}

func TestRateLimiterConcurrentRequestsAndEviction(t *testing.T) {
	rl := NewRateLimiter(rate.Inf, 1)
	defer rl.Stop()

	// Requests keep touching the visitor's lastSeen while the eviction
	// pass reads it from another goroutine.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				rl.getLimiter("10.0.0.1").Allow()
			}
		}()
	}
	for i := 0; i < 500; i++ {
		rl.evictIdle(time.Minute)
	}
	wg.Wait()
}
