package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// rateLimitKeyPrefix namespaces rate limit counters in Redis.
const rateLimitKeyPrefix = "ratelimit:"

// RateLimit returns middleware that allows at most maxRequests per client IP
// per fixed window for the named bucket, counted in Redis so limits hold
// across instances. Returns 429 when exceeded. If Redis is unavailable the
// request is let through and a warning is logged.
func RateLimit(rdb *redis.Client, bucket string, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			slot := time.Now().UnixNano() / int64(window)
			key := rateLimitKeyPrefix + bucket + ":" + c.RealIP() + ":" + strconv.FormatInt(slot, 10)

			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				slog.Warn("rate limiter unavailable",
					slog.String("bucket", bucket),
					slog.Any("error", err),
				)
				return next(c)
			}

			if incr.Val() > int64(maxRequests) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			}
			return next(c)
		}
	}
}
