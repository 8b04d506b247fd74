package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("k", 3, time.Minute), "request %d should pass", i)
	}
	assert.False(t, limiter.Allow("k", 3, time.Minute))

	// A different key has its own window.
	assert.True(t, limiter.Allow("other", 3, time.Minute))
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := NewRateLimiter()

	assert.True(t, limiter.Allow("k", 1, 10*time.Millisecond))
	assert.False(t, limiter.Allow("k", 1, 10*time.Millisecond))
	time.Sleep(15 * time.Millisecond)
	assert.True(t, limiter.Allow("k", 1, 10*time.Millisecond))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(), 2, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	status := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusTooManyRequests, status())
}

func TestRateLimitNilLimiterDisables(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(nil, 1, time.Minute))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
