package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"goldloan-engine/internal/config"
)

func TestRateLimiterMiddleware(t *testing.T) {
	t.Run("limits a single client after the burst", func(t *testing.T) {
		cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}
		rl := NewRateLimiterMiddleware(cfg, testLogger())
		handler := rl.Middleware(okHandler())

		request := func() int {
			req := httptest.NewRequest(http.MethodGet, "/admin/customers", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, request())
		assert.Equal(t, http.StatusOK, request())
		code := request()
		assert.Equal(t, http.StatusTooManyRequests, code)
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
		rl := NewRateLimiterMiddleware(cfg, testLogger())
		handler := rl.Middleware(okHandler())

		request := func(addr string) int {
			req := httptest.NewRequest(http.MethodGet, "/admin/customers", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, request("10.0.0.1:1234"))
		assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1234"))
		assert.Equal(t, http.StatusOK, request("10.0.0.2:1234"))
	})

	t.Run("prefers the forwarded-for header", func(t *testing.T) {
		cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
		rl := NewRateLimiterMiddleware(cfg, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		assert.Equal(t, "203.0.113.9", rl.extractIP(req))
	})

	t.Run("passes everything through when disabled", func(t *testing.T) {
		cfg := config.RateLimitConfig{Enabled: false}
		rl := NewRateLimiterMiddleware(cfg, testLogger())
		handler := rl.Middleware(okHandler())

		for i := 0; i < 10; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}
