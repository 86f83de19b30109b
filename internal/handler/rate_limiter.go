package handler

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Simple in-memory token bucket per key (client IP).
// Buckets live in process; several server instances each enforce their own limit.
type tokenBucket struct {
	tokens float64
	last   time.Time
}

type SimpleRateLimiter struct {
	buckets map[string]*tokenBucket
	mu      sync.Mutex
	rate    float64 // tokens per second
	burst   float64
	now     func() time.Time
}

func NewSimpleRateLimiter(rate float64, burst int) *SimpleRateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &SimpleRateLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow takes a token for key. When none is left it reports how long until
// the next one.
func (s *SimpleRateLimiter) Allow(key string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		s.buckets[key] = &tokenBucket{tokens: s.burst - 1, last: now}
		return true, 0
	}
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(s.burst, b.tokens+elapsed*s.rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens -= 1
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / s.rate * float64(time.Second))
	return false, wait
}

// Prune drops buckets idle for longer than ttl.
func (s *SimpleRateLimiter) Prune(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, b := range s.buckets {
		if now.Sub(b.last) > ttl {
			delete(s.buckets, k)
			n++
		}
	}
	return n
}

// PruneLoop runs Prune every interval until stop is closed.
func (s *SimpleRateLimiter) PruneLoop(interval, ttl time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Prune(ttl)
		case <-stop:
			return
		}
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		if ip := strings.TrimSpace(strings.Split(xf, ",")[0]); ip != "" {
			return ip
		}
	}
	if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
