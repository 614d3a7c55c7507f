package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func pingRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestInternalAuthAcceptsMatchingKey(t *testing.T) {
	router := pingRouter(InternalAuth("secret-key"))

	w := serve(router, map[string]string{"X-Internal-API-Key": "secret-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInternalAuthRejectsWrongKey(t *testing.T) {
	router := pingRouter(InternalAuth("secret-key"))

	assert.Equal(t, http.StatusUnauthorized, serve(router, map[string]string{"X-Internal-API-Key": "nope"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, nil).Code)
}

func TestInternalAuthMisconfigured(t *testing.T) {
	router := pingRouter(InternalAuth(""))

	w := serve(router, map[string]string{"X-Internal-API-Key": "anything"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimitEnforcesBurst(t *testing.T) {
	router := pingRouter(RateLimit(RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         2,
		IdleEviction:      time.Minute,
	}))

	assert.Equal(t, http.StatusOK, serve(router, nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, nil).Code)
}

func TestRateLimitIsolatesClients(t *testing.T) {
	router := pingRouter(RateLimit(RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		IdleEviction:      time.Minute,
	}))

	assert.Equal(t, http.StatusOK, serve(router, map[string]string{"X-Forwarded-For": "10.0.0.1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, map[string]string{"X-Forwarded-For": "10.0.0.1"}).Code)
	// A different client has its own bucket
	assert.Equal(t, http.StatusOK, serve(router, map[string]string{"X-Forwarded-For": "10.0.0.2"}).Code)
}

func TestClientRateLimiterEvictsIdle(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		IdleEviction:      0,
	})

	rl.Allow("10.0.0.1")
	assert.Len(t, rl.clients, 1)

	time.Sleep(time.Millisecond)
	rl.EvictIdle()
	assert.Empty(t, rl.clients)
}

func TestRequestIDGenerated(t *testing.T) {
	router := pingRouter(RequestID())

	w := serve(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	router := pingRouter(RequestID())

	w := serve(router, map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
