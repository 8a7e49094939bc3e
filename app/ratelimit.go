package app

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiters sync.Map
	rps      rate.Limit
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &rateLimiter{rps: rate.Limit(rps), burst: burst}
}

func (l *rateLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

// RateLimit applies a per-client token bucket keyed by client IP. It is
// installed ahead of authentication, so the principal is not known yet here.
func RateLimit(cfg Config) gin.HandlerFunc {
	limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
