package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/sparx/internal/config"
	"github.com/nfrund/sparx/internal/handlers"
	"github.com/nfrund/sparx/internal/metrics"
	"github.com/nfrund/sparx/internal/middleware"
	"github.com/nfrund/sparx/internal/storage"
)

// AuthService is what the user endpoints and the auth middleware need.
type AuthService interface {
	handlers.AuthService
	middleware.Authenticator
}

// Dependencies holds everything the HTTP server is built from.
type Dependencies struct {
	Config    config.Provider
	Auth      AuthService
	Inventory handlers.InventoryService
	Support   handlers.SupportService
	Health    handlers.HealthChecker
	// Files is served under /uploads when set.
	Files storage.Store
	// Metrics is optional. /metrics is only registered when it is set.
	Metrics *metrics.Metrics
	// RateLimitStore overrides the in-memory rate limiter store.
	RateLimitStore echomw.RateLimiterStore
	// Echo is created when nil.
	Echo *echo.Echo
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E    *echo.Echo
	deps Dependencies
}

// New creates a new Server instance with the middleware chain and error
// handling configured. Routes are added by RegisterRoutes.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Auth == nil || deps.Inventory == nil || deps.Support == nil {
		return nil, errors.New("server: auth, inventory and support services are required")
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     deps.Config.GetCORSOrigins(),
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
	}))
	e.Use(echomw.BodyLimit(bodyLimit(deps.Config.GetMaxUploadSize())))

	return &Server{E: e, deps: deps}, nil
}

// bodyLimit leaves room for the form fields sent alongside an image.
func bodyLimit(maxUpload int64) string {
	const margin = 1 << 20
	return fmt.Sprintf("%dK", (maxUpload+margin)/1024)
}

// setupErrorHandling installs the JSON error handler.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
}
