package server

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/sparx/internal/handlers"
	"github.com/nfrund/sparx/internal/middleware"
	"github.com/nfrund/sparx/internal/storage"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	userHandler := handlers.NewUserHandler(s.deps.Auth)
	productHandler := handlers.NewProductHandler(s.deps.Inventory)
	contactHandler := handlers.NewContactHandler(s.deps.Support)
	healthHandler := handlers.NewHealthHandler(s.deps.Health)

	authRequired := middleware.Auth(s.deps.Auth)
	// Each limited route gets its own limiter and per-IP bucket.
	rateLimiter := func() echo.MiddlewareFunc {
		if s.deps.RateLimitStore != nil {
			return middleware.RateLimiterWithStore(s.deps.RateLimitStore)
		}
		return middleware.RateLimiter(s.deps.Config.GetRateLimit())
	}

	s.E.GET("/", handlers.HomeGet)
	s.E.GET("/health", healthHandler.HealthCheck)
	if s.deps.Metrics != nil {
		s.E.GET("/metrics", s.deps.Metrics.Handler())
	}
	if s.deps.Files != nil {
		s.E.GET(storage.UploadsPrefix+"/*", storage.NewFileHandler(s.deps.Files).Download)
	}

	users := s.E.Group("/api/users")
	users.POST("/register", userHandler.Register, rateLimiter())
	users.POST("/login", userHandler.Login, rateLimiter())
	users.GET("/logout", userHandler.Logout)
	users.GET("/getuser", userHandler.GetUser, authRequired)
	users.GET("/loggedin", userHandler.LoggedIn)
	users.PATCH("/updateuser", userHandler.UpdateUser, authRequired)
	users.PATCH("/changepassword", userHandler.ChangePassword, authRequired)
	users.POST("/forgotpassword", userHandler.ForgotPassword, rateLimiter())
	users.PUT("/resetpassword/:resetToken", userHandler.ResetPassword)

	products := s.E.Group("/api/products", authRequired)
	products.POST("", productHandler.CreateProduct)
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	s.E.POST("/api/contactus", contactHandler.ContactUs, authRequired)
}
