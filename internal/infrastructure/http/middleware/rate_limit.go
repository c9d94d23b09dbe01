package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/acta-generator/errors"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/cache"
	"github.com/johnquangdev/acta-generator/pkg/metrics"
)

// RateLimit limits generation requests per client IP.
// Requests pass through when the limiter backend is unreachable.
func RateLimit(limiter cache.Limiter, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				if logger != nil {
					logger.Warn("rate limiter unavailable", zap.String("client", key), zap.Error(err))
				}
				return next(c)
			}

			if !allowed {
				metrics.RateLimited.Inc()
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return errors.ErrRateLimited(retryAfter)
			}

			return next(c)
		}
	}
}
