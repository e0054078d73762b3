package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter enforces per-source-IP rate limiting using a token bucket per
// IP. Limiters for idle IPs are removed by a background cleanup goroutine;
// call Stop during shutdown to end it.
//
// The server binds to loopback, so under normal configuration every request
// shares one bucket. The per-IP map keeps limits independent if the bind
// address is ever widened.
type RateLimiter struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
//
// Configuration:
//   - rps: Requests per second allowed per source IP
//   - burst: Maximum burst capacity for temporary spikes
func NewRateLimiter(rps float64, burst int, logger *slog.Logger) *RateLimiter {
	r := &RateLimiter{
		rps:    rps,
		burst:  burst,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	// Cleanup runs every 5 minutes until Stop is called
	go r.cleanupStale(5 * time.Minute)

	return r
}

// Middleware returns a Gin middleware that enforces the rate limit.
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := r.getLimiter(c.ClientIP())

		if !limiter.Allow() {
			// Calculate retry-after delay
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			r.logger.Debug("rate limit exceeded",
				slog.String("client_ip", c.ClientIP()),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Stop ends the cleanup goroutine and waits for it to exit. Call once during
// shutdown.
func (r *RateLimiter) Stop() {
	close(r.stop)
	<-r.done
}

// getLimiter retrieves or creates a rate limiter for a source IP.
func (r *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	// Try to load existing limiter
	if val, ok := r.limiters.Load(clientIP); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	// Create new limiter
	limiter := rate.NewLimiter(rate.Limit(r.rps), r.burst)
	entry := &rateLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	r.limiters.Store(clientIP, entry)
	return limiter
}

// cleanupStale removes rate limiters that haven't been accessed recently.
// Runs periodically to prevent unbounded memory growth.
func (r *RateLimiter) cleanupStale(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			// Remove limiters not accessed in last hour
			threshold := time.Now().Add(-1 * time.Hour)
			r.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					r.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
