package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/sparx/internal/audit"
	"github.com/nfrund/sparx/internal/auth"
	"github.com/nfrund/sparx/internal/config"
	"github.com/nfrund/sparx/internal/database"
	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/email"
	"github.com/nfrund/sparx/internal/events"
	"github.com/nfrund/sparx/internal/inventory"
	"github.com/nfrund/sparx/internal/metrics"
	"github.com/nfrund/sparx/internal/middleware"
	"github.com/nfrund/sparx/internal/pubsub"
	"github.com/nfrund/sparx/internal/storage"
	"github.com/nfrund/sparx/internal/support"
	"github.com/samber/do/v2"
)

// connectTimeout bounds the initial database connection, retries included.
const connectTimeout = 30 * time.Second

// NewContainer registers every service of the application. Services are
// created lazily on first Invoke.
func NewContainer(cfg config.Provider) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i do.Injector) (*database.Connection, error) {
		conn := database.NewConnection(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := conn.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.ApplySchema(ctx, conn); err != nil {
			_ = conn.Close(context.Background())
			return nil, err
		}
		conn.StartMonitoring()
		return conn, nil
	})

	do.Provide(injector, func(i do.Injector) (*database.UserStore, error) {
		client, err := database.NewClient[domain.User](do.MustInvoke[*database.Connection](i))
		if err != nil {
			return nil, err
		}
		return database.NewUserStore(client), nil
	})
	do.Provide(injector, func(i do.Injector) (*database.ResetTokenStore, error) {
		client, err := database.NewClient[domain.ResetToken](do.MustInvoke[*database.Connection](i))
		if err != nil {
			return nil, err
		}
		return database.NewResetTokenStore(client), nil
	})
	do.Provide(injector, func(i do.Injector) (*database.ProductStore, error) {
		client, err := database.NewClient[domain.Product](do.MustInvoke[*database.Connection](i))
		if err != nil {
			return nil, err
		}
		return database.NewProductStore(client), nil
	})

	do.Provide(injector, func(i do.Injector) (*pubsub.WatermillBridge, error) {
		return pubsub.NewWatermillBridge(), nil
	})
	do.Provide(injector, func(i do.Injector) (domain.EmailSender, error) {
		return email.NewEmailService(cfg)
	})
	do.Provide(injector, func(i do.Injector) (storage.Store, error) {
		return storage.NewStore(context.Background(), cfg)
	})
	do.Provide(injector, func(i do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*auth.Service, error) {
		return auth.NewService(auth.Dependencies{
			Users:       do.MustInvoke[*database.UserStore](i),
			ResetTokens: do.MustInvoke[*database.ResetTokenStore](i),
			Hasher:      auth.NewBcryptHasher(0),
			Tokens:      auth.NewTokenIssuer(cfg.GetJWTSecret(), cfg.GetSessionTTL()),
			Mailer:      do.MustInvoke[domain.EmailSender](i),
			Publisher:   do.MustInvoke[*pubsub.WatermillBridge](i),
		}, auth.Options{
			FrontendURL:          cfg.GetFrontendURL(),
			EmailSender:          cfg.GetEmailSender(),
			SingleUseResetTokens: cfg.GetResetTokenSingleUse(),
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (*inventory.Service, error) {
		return inventory.NewService(inventory.Dependencies{
			Products:  do.MustInvoke[*database.ProductStore](i),
			Store:     do.MustInvoke[storage.Store](i),
			Publisher: do.MustInvoke[*pubsub.WatermillBridge](i),
		}, cfg.GetMaxUploadSize()), nil
	})
	do.Provide(injector, func(i do.Injector) (*support.Service, error) {
		return support.NewService(
			do.MustInvoke[domain.EmailSender](i),
			do.MustInvoke[*pubsub.WatermillBridge](i),
			cfg.GetSupportEmail(),
			cfg.GetEmailSender(),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*Server, error) {
		limiterStore, err := rateLimitStore(cfg)
		if err != nil {
			return nil, err
		}
		s, err := New(Dependencies{
			Config:         cfg,
			Auth:           do.MustInvoke[*auth.Service](i),
			Inventory:      do.MustInvoke[*inventory.Service](i),
			Support:        do.MustInvoke[*support.Service](i),
			Health:         do.MustInvoke[*database.Connection](i),
			Files:          do.MustInvoke[storage.Store](i),
			Metrics:        do.MustInvoke[*metrics.Metrics](i),
			RateLimitStore: limiterStore,
		})
		if err != nil {
			return nil, err
		}
		s.RegisterRoutes()
		return s, nil
	})

	return injector
}

// rateLimitStore returns a Redis backed store when REDIS_ADDR is set, and nil
// to fall back to the in-memory store.
func rateLimitStore(cfg config.Provider) (echomw.RateLimiterStore, error) {
	if cfg.GetRedisAddr() == "" {
		return nil, nil
	}
	client, err := middleware.NewRedisClient(context.Background(), cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return middleware.NewRedisStore(client, cfg.GetRateLimit(), time.Minute, slog.Default()), nil
}

// Run builds the application, serves HTTP until ctx is canceled or a
// shutdown signal arrives, then releases every resource.
func Run(ctx context.Context, cfg config.Provider) error {
	ctx, stop := shutdownContext(ctx)
	defer stop()

	injector := NewContainer(cfg)

	srv, err := do.Invoke[*Server](injector)
	if err != nil {
		return err
	}
	conn := do.MustInvoke[*database.Connection](injector)
	bus := do.MustInvoke[*pubsub.WatermillBridge](injector)
	m := do.MustInvoke[*metrics.Metrics](injector)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := bus.Close(); err != nil {
			slog.Error("Failed to close event bus", "error", err)
		}
		if err := conn.Close(closeCtx); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	recorder := audit.NewRecorder(slog.Default(), m.EventsTotal)
	if err := recorder.Start(ctx, bus, events.Topics()); err != nil {
		return err
	}

	return srv.Start(ctx, cfg.GetServerAddr())
}
