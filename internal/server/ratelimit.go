package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"classflow/internal/api"
)

// ipLimiter keeps one token bucket per client IP. Buckets idle for longer
// than staleAfter are evicted by a background sweep so the map does not grow
// with every member phone and front-desk tablet that ever hit the API.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	rps        rate.Limit
	burst      int
	staleAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(rps float64, burst int, staleAfter time.Duration) *ipLimiter {
	l := &ipLimiter{
		buckets:    make(map[string]*bucket),
		rps:        rate.Limit(rps),
		burst:      burst,
		staleAfter: staleAfter,
	}

	go l.sweep()

	return l
}

func (l *ipLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.evictStale()
	}
}

func (l *ipLimiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, b := range l.buckets {
		if time.Since(b.lastSeen) > l.staleAfter {
			delete(l.buckets, ip)
		}
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	limiter := b.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

// RateLimitMiddleware rejects clients exceeding rps sustained, with burst
// headroom for bursty screens like the schedule grid.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "rate_limited",
			})
			return
		}
		c.Next()
	}
}
