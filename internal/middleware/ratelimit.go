package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// CheckRateLimit counts one hit for id against resource and reports whether it
// is within limit for the current window. The window key is created with its
// TTL and incremented in one MULTI/EXEC, so a counter never exists without an expiry.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", resource, id)

	var incr *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// RateLimit allows limit requests per window per client IP for resource. It is
// a no-op when rdb is nil and lets requests through when Redis fails.
func RateLimit(rdb *redis.Client, resource string, limit int, window time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || limit <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			allowed, err := CheckRateLimit(ctx, rdb, resource, "ip:"+c.RealIP(), limit, window)
			if err != nil {
				metrics.RedisErrors.WithLabelValues("rate_limit").Inc()
				logger.WarnContext(ctx, "rate limit check failed, allowing request", "resource", resource, "error", err)
				return next(c)
			}
			if !allowed {
				metrics.RateLimitRejections.WithLabelValues(resource).Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
			}
			return next(c)
		}
	}
}
