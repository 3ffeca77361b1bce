package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory sliding window per client IP. Good enough for a
// single instance; a multi-instance deployment would move the window to a
// shared store.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rl.mu.Lock()

		times := rl.requests[ip]
		var live []time.Time
		for _, t := range times {
			if now.Sub(t) < rl.window {
				live = append(live, t)
			}
		}

		if len(live) >= rl.limit {
			rl.requests[ip] = live
			rl.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try later."})
			c.Abort()
			return
		}

		rl.requests[ip] = append(live, now)
		rl.mu.Unlock()

		c.Next()
	}
}
