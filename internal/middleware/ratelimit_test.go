package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(l *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(l.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func ping(r http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := NewRateLimiter(60, 3)
	clock := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	r := limitedRouter(l)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1"), "request %d within burst", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1"))
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	l := NewRateLimiter(60, 2)
	clock := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	r := limitedRouter(l)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1"))

	// 60/min refills one token per second.
	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1"))
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	l := NewRateLimiter(60, 1)
	clock := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	r := limitedRouter(l)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.2"), "a second client has its own bucket")
}
