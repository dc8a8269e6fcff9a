package handler

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

func (v *visitor) touch() {
	v.mu.Lock()
	v.lastSeen = time.Now()
	v.mu.Unlock()
}

func (v *visitor) idle() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return time.Since(v.lastSeen)
}

// RateLimiter tracks per-IP rate limits using token buckets.
type RateLimiter struct {
	visitors sync.Map
	rate     rate.Limit
	burst    int
	done     chan struct{}
}

// NewRateLimiter creates a rate limiter that allows r requests per second
// with the given burst size. A background goroutine evicts stale entries
// every 10 minutes.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:  r,
		burst: burst,
		done:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	v, ok := rl.visitors.Load(ip)
	if ok {
		vis := v.(*visitor)
		vis.touch()
		return vis.limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.visitors.Store(ip, &visitor{limiter: limiter, lastSeen: time.Now()})
	return limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle(10 * time.Minute)
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(maxIdle time.Duration) {
	rl.visitors.Range(func(key, value any) bool {
		if value.(*visitor).idle() > maxIdle {
			rl.visitors.Delete(key)
		}
		return true
	})
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if fwd := r.Header.Get("X-Real-Ip"); fwd != "" {
			ip = fwd
		}
		if !rl.getLimiter(ip).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
