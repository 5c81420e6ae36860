package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// DefaultRateLimit is the number of requests a client may make per minute.
const DefaultRateLimit = 10

// RateLimiter creates a rate limiter middleware backed by an in-memory store.
// It limits requests to perMinute per minute per IP address for the routes it's applied to.
func RateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = DefaultRateLimit
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return RateLimiterWithStore(store)
}

// RateLimiterWithStore limits requests per route and IP address using store.
func RateLimiterWithStore(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Store: store,

		// Clients are identified by their real IP address, with a separate
		// bucket for every route sharing the store.
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.Request().Method + " " + c.Path() + "|" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
