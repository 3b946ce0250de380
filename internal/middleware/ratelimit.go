package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Redis key prefix, one per protected route
}

// RateLimiter is a fixed-window counter per client kept in Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimitConfig
	logger *zap.Logger
}

func NewRateLimiter(client *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, config: config, logger: logger}
}

// hit counts one request for key and returns the running count and the
// time left in the window.
func (l *RateLimiter) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return count, l.config.Window, err
		}
		return count, l.config.Window, nil
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// A key without expiry would block the client forever.
		_ = l.client.Expire(ctx, key, l.config.Window).Err()
		ttl = l.config.Window
	}
	return count, ttl, nil
}

// Middleware limits requests per client address. Redis failures let the
// request through.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.RemoteAddr
		if userNumber, ok := GetUserNumber(r.Context()); ok {
			clientID = "user:" + strconv.FormatInt(userNumber, 10)
		}
		key := fmt.Sprintf("%s:%s", l.config.KeyPrefix, clientID)

		count, ttl, err := l.hit(r.Context(), key)
		if err != nil {
			l.logger.Error("Failed to update rate limit counter",
				zap.Error(err),
				zap.String("key", key),
			)
			next.ServeHTTP(w, r)
			return
		}

		limit := l.config.RequestsPerWindow
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(limit) {
			l.logger.Warn("Rate limit exceeded",
				zap.String("client_id", clientID),
				zap.String("path", r.URL.Path),
				zap.Int64("count", count),
				zap.Int("limit", limit),
			)

			retryAfter := int(ttl.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware builds a limiter and returns its middleware.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return NewRateLimiter(redisClient, config, logger).Middleware
}
