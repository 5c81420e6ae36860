package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HomeGet handles the GET request for the root path.
func HomeGet(c echo.Context) error {
	return c.String(http.StatusOK, "Home Page")
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	IsHealthy() bool
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck answers 503 while the database connection is down.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	if h.db == nil || !h.db.IsHealthy() {
		return c.String(http.StatusServiceUnavailable, "Database unavailable")
	}
	return c.String(http.StatusOK, "OK")
}
