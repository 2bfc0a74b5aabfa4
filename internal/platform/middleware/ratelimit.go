package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// LoginThrottleConfig limits login attempts per client IP.
type LoginThrottleConfig struct {
	AttemptsPerMinute int
	Burst             int
}

func DefaultLoginThrottleConfig() LoginThrottleConfig {
	return LoginThrottleConfig{AttemptsPerMinute: 30, Burst: 10}
}

// LoginThrottle rate-limits requests per client IP with echo's in-memory
// token buckets. Mount it on the login route only.
func LoginThrottle(cfg LoginThrottleConfig) echo.MiddlewareFunc {
	if cfg.AttemptsPerMinute <= 0 {
		cfg = DefaultLoginThrottleConfig()
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.AttemptsPerMinute) / 60),
		Burst:     cfg.Burst,
		ExpiresIn: 10 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set("Retry-After", "60")
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})
}
