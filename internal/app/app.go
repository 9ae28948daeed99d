// Package app assembles the license server: configuration, logging,
// observability, the record store, the service layer and the HTTP
// router, plus the run-until-signal lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"licensegate/internal/config"
	"licensegate/internal/infrastructure"
	"licensegate/internal/middleware"
	"licensegate/internal/services"
	"licensegate/internal/store"
	handlers "licensegate/internal/transport/http"
	"licensegate/pkg/contracts"
)

// Application is the assembled server.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	licenses    *store.LicenseRepository
	service     services.LicenseService
	rateLimiter *middleware.IPRateLimiter
}

// New builds the application from configuration. The database must be
// reachable; migrations run before the server accepts traffic.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.InfoContext(ctx, "application starting",
		slog.String("service", "licensegate"),
		slog.String("version", contracts.Version),
	)

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.DefaultOTelConfig(contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	db, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect store: %w", err)
	}
	if err := store.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	licenses := store.NewLicenseRepository(db)
	configs := store.NewConfigurationRepository(db)

	metrics, err := services.NewValidationMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		licenses:      licenses,
		service:       services.NewLicenseService(licenses, configs, metrics, logger),
	}

	if cfg.RateLimit.Enabled {
		app.rateLimiter = middleware.NewIPRateLimiter(
			cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TTL, logger)
	}

	app.setupRouter()
	app.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        app.Router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Recoverer(a.Logger))
	r.Use(middleware.SecurityHeaders)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Bot-facing endpoint, rate limited per client IP. The license
		// key in the body is its only credential.
		r.Group(func(r chi.Router) {
			if a.rateLimiter != nil {
				r.Use(a.rateLimiter.Handler)
			}
			validationHandler := handlers.NewValidationHandler(a.service, a.Logger)
			r.Mount("/validate", validationHandler.Routes())
		})

		// Operator surface behind bearer auth.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(a.Config.Admin.TokenHash, a.Config.Admin.Token, a.Logger))
			adminHandler := handlers.NewAdminHandler(a.service, a.Logger)
			r.Mount("/admin", adminHandler.Routes())
		})

		healthHandler := handlers.NewHealthHandler(a.licenses)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/info", handlers.Info)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// Run serves until the context is cancelled or a signal arrives, then
// shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.rateLimiter != nil {
		g.Go(func() error {
			a.rateLimiter.Start(gctx.Done())
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *Application) shutdown() error {
	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("observability shutdown error", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.Error("log file close error", slog.String("error", err.Error()))
	}

	a.Logger.Info("shutdown complete")
	return nil
}
