package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	db        Pinger
	cache     Pinger
	providers int
}

// NewHealthHandler builds the handler. cache may be nil when Redis is not
// configured.
func NewHealthHandler(db Pinger, cache Pinger, providers int) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, providers: providers}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
		status = "degraded"
	}

	resp := dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Providers: h.providers,
	}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Cache = "unhealthy"
		}
	}
	return c.JSON(resp)
}
