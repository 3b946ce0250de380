package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mw := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "rl:login",
	}, zap.NewNop())

	return mw(okHandler()), mr
}

func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the limit passes and the excess gets 429", prop.ForAll(
		func(limit int, excess int) bool {
			handler, mr := newTestLimiter(t, limit)
			defer mr.Close()

			passed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				req := httptest.NewRequest("POST", "/api/users/login", nil)
				req.RemoteAddr = "192.168.1.100"
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					passed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}

			return passed == limit && blocked == excess
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimit_HeadersAndClientIsolation(t *testing.T) {
	handler, _ := newTestLimiter(t, 2)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/users/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := send("10.0.0.1")
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	send("10.0.0.1")
	blocked := send("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	retry, err := strconv.Atoi(blocked.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimit_WindowExpiryResetsCounter(t *testing.T) {
	handler, mr := newTestLimiter(t, 1)

	req := func() int {
		r := httptest.NewRequest("POST", "/api/users/forgot-password", nil)
		r.RemoteAddr = "10.0.0.9"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, req())
	assert.Equal(t, http.StatusTooManyRequests, req())

	mr.FastForward(61 * time.Second)

	assert.Equal(t, http.StatusOK, req())
}

func TestRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	handler, mr := newTestLimiter(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/users/login", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
