package handler

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/elakbay/elakbay/internal/dto"
)

// staleAfter is how long an idle client keeps its limiter before the
// sweep drops it.
const staleAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key. It is process-local;
// each gateway instance enforces its own budget.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSwept time.Time
}

// NewRateLimiter allows `requests` per `window` with a burst of the same
// size.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		lastSwept: time.Now(),
	}
}

// Allow reports whether key may proceed and how many tokens remain.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweepLocked(now)

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now

	allowed := client.limiter.Allow()
	remaining := int(client.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSwept) < staleAfter {
		return
	}
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > staleAfter {
			delete(rl.clients, key)
		}
	}
	rl.lastSwept = now
}

// RateLimitMiddleware rejects clients over their per-IP budget with 429
func RateLimitMiddleware(limiter *RateLimiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := limiter.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
