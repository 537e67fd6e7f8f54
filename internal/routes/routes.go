package routes

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Report  *handlers.ReportHandler
	Webhook *handlers.WebhookHandler
	Admin   *handlers.AdminHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP. Gateway callbacks arrive
	// in bursts from a few IPs and are exempt.
	api.Use(limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/webhooks/")
		},
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth-specific rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// Completion calls cost money: 5 req/min per user
	generate := limiter.New(limiter.Config{
		Max:               5,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			if sess, err := session.FromFiber(c); err == nil {
				return "user:" + sess.UserID.String()
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Terlalu banyak permintaan, coba lagi sebentar lagi")
		},
	})

	reports := api.Group("/reports", middleware.JWTProtected(cfg))
	reports.Get("/", h.Report.List)
	reports.Post("/", h.Report.Create)
	reports.Get("/:id", h.Report.Get)
	reports.Post("/:id/preview", generate, h.Report.Preview)
	reports.Post("/:id/full", generate, h.Report.Full)
	reports.Post("/:id/payment", h.Report.StartPayment)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/reports/:id/confirm-payment", h.Admin.ConfirmPayment)

	// Webhooks authenticate with an HMAC signature, not a JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/qris", h.Webhook.HandleQRIS)
}
