package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limit scopes.
const (
	ScopeClient = "client"
	ScopeGlobal = "global"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// Scope is ScopeClient for a bucket per client IP or ScopeGlobal for one
	// shared bucket.
	Scope string
	// IdleTTL is how long an idle client's bucket is kept.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		Scope:             ScopeClient,
		IdleTTL:           10 * time.Minute,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets hands out one limiter per key and forgets keys idle past ttl.
type buckets struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) > b.ttl {
		for k, bk := range b.byKey {
			if now.Sub(bk.lastSeen) > b.ttl {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now
	return bk.limiter
}

// RateLimit rejects requests over the configured rate with 429 and a
// Retry-After header.
func RateLimit(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.RequestsPerSecond <= 0 || cfg.Burst <= 0 {
		return nil, fmt.Errorf("rate limit needs positive rps and burst, got %d and %d", cfg.RequestsPerSecond, cfg.Burst)
	}

	var key func(*gin.Context) string
	switch cfg.Scope {
	case "", ScopeClient:
		key = func(c *gin.Context) string { return c.ClientIP() }
	case ScopeGlobal:
		key = func(*gin.Context) string { return "" }
	default:
		return nil, fmt.Errorf("unknown rate limit scope %q", cfg.Scope)
	}

	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultRateLimitConfig().IdleTTL
	}
	b := &buckets{
		limit:     rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.Burst,
		ttl:       ttl,
		byKey:     make(map[string]*bucket),
		lastSweep: time.Now(),
	}

	return func(c *gin.Context) {
		now := time.Now()
		limiter := b.get(key(c), now)

		r := limiter.ReserveN(now, 1)
		if delay := r.DelayFrom(now); delay > 0 {
			r.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}, nil
}
