package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fitnessbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	config RateLimiterConfig
	limit  rate.Limit

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter starts a background sweep of idle clients; call Stop to end it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:   config,
		limit:    rate.Limit(float64(config.PerMinute) / 60.0),
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the client's budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", strconv.Itoa(rl.retryAfter()))
			response.Abort(c, http.StatusTooManyRequests, response.CodeRateLimited, "Too many booking requests, try again later")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) Count() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if cl, ok := rl.limiters[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}

	cl := &clientLimiter{
		limiter:    rate.NewLimiter(rl.limit, rl.config.Burst),
		lastAccess: now,
	}
	rl.limiters[key] = cl
	return cl.limiter
}

// retryAfter is the whole seconds until one token refills.
func (rl *RateLimiter) retryAfter() int {
	if rl.limit <= 0 {
		return 60
	}
	secs := int(math.Ceil(1.0 / float64(rl.limit)))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}
