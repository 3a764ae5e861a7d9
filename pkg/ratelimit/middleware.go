package ratelimit

import (
	"github.com/labstack/echo/v4"

	"github.com/getcalls/website/pkg/apperror"
	"github.com/getcalls/website/pkg/metrics"
)

// Middleware rejects requests over the limit with 429. The bucket is keyed
// by client IP and scoped by name so separate routes do not share budgets.
func Middleware(name string, k *Keyed) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !k.Allow(name + ":" + c.RealIP()) {
				metrics.RateLimited.WithLabelValues(name).Inc()
				return apperror.ErrRateLimited
			}
			return next(c)
		}
	}
}
