package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anchorapp/anchor/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func claimsForSubject(subject string) jwtx.Claims {
	return jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("allows up to burst then rejects", func(t *testing.T) {
		cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
		h := Chain(okHandler(), RateLimitByIP(cfg))

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("buckets are per key", func(t *testing.T) {
		cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := Chain(okHandler(), RateLimitByIP(cfg))

		first := httptest.NewRecorder()
		reqA := httptest.NewRequest(http.MethodGet, "/", nil)
		reqA.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(first, reqA)
		require.Equal(t, http.StatusOK, first.Code)

		// Exhausted for .1, but .2 still has a full bucket.
		blocked := httptest.NewRecorder()
		h.ServeHTTP(blocked, reqA)
		require.Equal(t, http.StatusTooManyRequests, blocked.Code)

		other := httptest.NewRecorder()
		reqB := httptest.NewRequest(http.MethodGet, "/", nil)
		reqB.RemoteAddr = "10.0.0.2:1234"
		h.ServeHTTP(other, reqB)
		require.Equal(t, http.StatusOK, other.Code)
	})

	t.Run("forwarded headers decide the key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		require.Equal(t, "203.0.113.7", IPKeyExtractor(req))

		req.Header.Del("X-Forwarded-For")
		req.Header.Set("X-Real-IP", "203.0.113.9")
		require.Equal(t, "203.0.113.9", IPKeyExtractor(req))

		req.Header.Del("X-Real-IP")
		require.Equal(t, "10.0.0.1", IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	// Without auth the composite falls back to IP alone.
	key := CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor)(req)
	require.Equal(t, "10.0.0.1", key)

	authed := req.WithContext(contextWithAuth(req.Context(), claimsForSubject("user-1")))
	key = CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor)(authed)
	require.Equal(t, "user-1:10.0.0.1", key)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "5")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "7")

	cfg := ParseRateLimitFromEnv("TEST", RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})
	require.Equal(t, 5, cfg.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.Window)
	require.Equal(t, 7, cfg.Burst)

	t.Setenv("RATELIMIT_TEST_REQUESTS", "garbage")
	cfg = ParseRateLimitFromEnv("TEST", RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})
	require.Equal(t, 1, cfg.RequestsPerWindow)
}
