package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, handler http.Handler, path string, ip string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows requests within the burst", func(t *testing.T) {
		m := NewRateLimitMiddleware(5, 2)
		handler := m.Handler(okHandler)

		for i := 0; i < 5; i++ {
			rec := doRequest(t, handler, "/api/v1/articles", "10.0.0.1")
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		}
	})

	t.Run("rejects requests over the general limit", func(t *testing.T) {
		m := NewRateLimitMiddleware(3, 2)
		handler := m.Handler(okHandler)

		for i := 0; i < 3; i++ {
			require.Equal(t, http.StatusOK, doRequest(t, handler, "/api/v1/articles", "10.0.0.2").Code)
		}

		rec := doRequest(t, handler, "/api/v1/articles", "10.0.0.2")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "Too many requests")
	})

	t.Run("auth endpoints use the tighter bucket", func(t *testing.T) {
		m := NewRateLimitMiddleware(100, 2)
		handler := m.Handler(okHandler)

		require.Equal(t, http.StatusOK, doRequest(t, handler, "/api/v1/auth/login", "10.0.0.3").Code)
		require.Equal(t, http.StatusOK, doRequest(t, handler, "/api/v1/auth/login", "10.0.0.3").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "/api/v1/auth/login", "10.0.0.3").Code)

		// The general bucket for the same client is untouched.
		assert.Equal(t, http.StatusOK, doRequest(t, handler, "/api/v1/articles", "10.0.0.3").Code)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		m := NewRateLimitMiddleware(1, 1)
		handler := m.Handler(okHandler)

		require.Equal(t, http.StatusOK, doRequest(t, handler, "/api/v1/articles", "10.0.0.4").Code)
		require.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "/api/v1/articles", "10.0.0.4").Code)
		assert.Equal(t, http.StatusOK, doRequest(t, handler, "/api/v1/articles", "10.0.0.5").Code)
	})
}

func TestExtractClientIP(t *testing.T) {
	t.Run("prefers first forwarded address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.2")
		assert.Equal(t, "203.0.113.9", extractClientIP(req))
	})

	t.Run("falls back to real ip header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.10")
		assert.Equal(t, "203.0.113.10", extractClientIP(req))
	})

	t.Run("falls back to remote addr host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.7:40000"
		assert.Equal(t, "192.0.2.7", extractClientIP(req))
	})

	t.Run("handles missing remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ""
		assert.Equal(t, "unknown", extractClientIP(req))
	})
}
