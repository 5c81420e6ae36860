package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/logging"
)

// Logger is a middleware that injects a request-scoped logger into the context.
// This logger is pre-configured with the request ID from the RequestID middleware.
// It should be placed after the RequestID middleware in the chain.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)
		requestLogger := slog.Default().With("request_id", reqID)

		c.SetRequest(c.Request().WithContext(logging.WithLogger(c.Request().Context(), requestLogger)))

		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		attrs := []any{
			"event", "http_request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", res.Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_ip", c.RealIP(),
		}
		switch {
		case res.Status >= 500:
			requestLogger.Error("Request failed", append(attrs, "error", err)...)
		case res.Status >= 400:
			requestLogger.Warn("Request rejected", attrs...)
		default:
			requestLogger.Info("Request handled", attrs...)
		}
		return nil
	}
}
