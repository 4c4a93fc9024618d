package middleware

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window. The
// counters live in an expiring in-process cache, so each entry is dropped once
// its window has passed.
func RateLimit(maxRequests int, period time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 || period <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	counters := cache.New(period, 2*period)

	return func(c *gin.Context) {
		count, expires := windowHit(counters, c.ClientIP()+"|"+c.FullPath(), period)
		reset := max(time.Until(expires), 0)

		remaining := max(maxRequests-count, 0)
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(reset.Seconds())))

		if count > maxRequests {
			response.Error(c, errors.ErrTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}

// windowHit counts one request against key's current window and returns the
// new count and when the window closes. Each window owns its own atomic
// counter: a new window installs a fresh one and never resets a live counter.
func windowHit(counters *cache.Cache, key string, period time.Duration) (int, time.Time) {
	for {
		if v, expires, ok := counters.GetWithExpiration(key); ok {
			return int(v.(*atomic.Int64).Add(1)), expires
		}
		fresh := new(atomic.Int64)
		if counters.Add(key, fresh, period) == nil {
			return int(fresh.Add(1)), time.Now().Add(period)
		}
	}
}
