package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/completion"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func paymentSettings(cfg *config.Config) services.PaymentSettings {
	return services.PaymentSettings{
		Amount:       cfg.PaymentAmount,
		Currency:     cfg.PaymentCurrency,
		MerchantName: cfg.PaymentMerchantName,
	}
}

func runServe(ctx context.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(logging.ParseLevel(cfg.LogLevel)),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	if cfg.PaymentWebhookSecret == "" {
		slog.Warn("PAYMENT_WEBHOOK_SECRET not set, QRIS webhooks will be rejected")
	}

	// Completion providers
	provider, err := completion.NewFromConfig(ctx, cfg)
	if err != nil {
		slog.Error("completion provider setup failed", "error", err)
		return err
	}

	// Optional preview cache
	reportOpts := []services.ReportOption{services.WithPaymentSettings(paymentSettings(cfg))}
	var cachePinger handlers.Pinger
	if cfg.RedisURL != "" {
		client, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			slog.Error("redis setup failed", "error", err)
			return err
		}
		previewCache := cache.NewPreviewCache(client, cfg.PreviewCacheTTL)
		defer previewCache.Close()
		if err := previewCache.Ping(ctx); err != nil {
			slog.Warn("redis not reachable, preview cache degraded", "error", err)
		}
		reportOpts = append(reportOpts, services.WithPreviewCache(previewCache))
		cachePinger = previewCache
		slog.Info("preview cache enabled", "ttl", cfg.PreviewCacheTTL)
	}

	// Session events
	hub := session.NewHub()
	unsubscribe := hub.Subscribe(func(e session.Event) {
		slog.Info("session event", "kind", string(e.Kind), "user_id", e.Session.UserID)
	})
	defer unsubscribe()

	// Services
	reportStore := store.NewReportStore(database.DB)
	reportOpts = append(reportOpts, services.WithPreviewTimeout(provider.MaxDuration()))
	reportService := services.NewReportService(reportStore, provider, reportOpts...)
	paymentService := services.NewPaymentService(reportService, reportStore, store.NewPaymentEventStore(database.DB), cfg.PaymentWebhookSecret)
	authService := services.NewAuthService(database.DB, cfg, hub)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout*time.Duration(cfg.AIMaxRetries+1) + 15*time.Second,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${locals:requestid} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Health:  handlers.NewHealthHandler(handlers.PingFunc(database.Ping), cachePinger, provider.Len()),
		Report:  handlers.NewReportHandler(reportService),
		Webhook: handlers.NewWebhookHandler(paymentService),
		Admin:   handlers.NewAdminHandler(paymentService),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	var serveErr error
	select {
	case <-quit:
		slog.Info("shutting down server...")
	case serveErr = <-listenErr:
		slog.Error("server failed to start", "error", serveErr)
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	return serveErr
}
