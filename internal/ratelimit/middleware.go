package ratelimit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const TooManyRequests = "Too many requests, try again later."

// Middleware throttles every request by client identity. Requests to
// skipPaths are never counted. A failing limiter lets the request through.
func Middleware(l Limiter, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			ok, err := l.Allow(req.Context(), Identity(c.RealIP(), req.UserAgent()))
			if err != nil {
				logging.FromContext(req.Context()).Warn("rate_limit_unavailable", "error", err)
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, TooManyRequests)
			}
			return next(c)
		}
	}
}
