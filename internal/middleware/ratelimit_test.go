package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(2, 200*time.Millisecond))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w
	}

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, send().Code)
	}

	w := send()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	time.Sleep(250 * time.Millisecond)
	require.Equal(t, http.StatusOK, send().Code)
}

func TestRateLimitDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(0, time.Second))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitCountsConcurrentRequestsExactly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(10, time.Minute))
	r.POST("/contact", func(c *gin.Context) { c.Status(http.StatusOK) })

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/contact", nil))
			if w.Code == http.StatusOK {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 10, accepted.Load())
}

func TestWindowHitStartsFreshCounterAfterExpiry(t *testing.T) {
	counters := cache.New(time.Minute, time.Minute)
	expired := new(atomic.Int64)
	expired.Store(99)
	counters.Set("k", expired, time.Nanosecond)
	time.Sleep(time.Millisecond)

	count, expires := windowHit(counters, "k", time.Minute)
	require.Equal(t, 1, count)
	require.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	count, _ = windowHit(counters, "k", time.Minute)
	require.Equal(t, 2, count)
}
