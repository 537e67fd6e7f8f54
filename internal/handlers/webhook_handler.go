package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WebhookHandler struct {
	paymentService *services.PaymentService
}

func NewWebhookHandler(paymentService *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// HandleQRIS applies a signed callback from the QRIS gateway. Unknown refs
// and amount mismatches are answered with 4xx so the gateway surfaces them.
func (h *WebhookHandler) HandleQRIS(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)

	res, err := h.paymentService.HandleGatewayCallback(c.UserContext(), body, c.Get(services.SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSignature):
			slog.Warn("qris webhook rejected", "reason", "signature", "ip", c.IP())
			return errorJSON(c, fiber.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, services.ErrValidation):
			return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook payload")
		case errors.Is(err, services.ErrNotFound):
			return errorJSON(c, fiber.StatusNotFound, "Unknown payment reference")
		}
		slog.Error("qris webhook processing failed", "request_id", requestID(c), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to process webhook event")
	}

	resp := dto.WebhookResponse{Received: true, Duplicate: res.Duplicate, Ignored: res.Ignored}
	if res.ReportID != uuid.Nil {
		resp.ReportID = res.ReportID.String()
	}
	slog.Info("qris webhook processed", "event_id", res.EventID, "report_id", resp.ReportID, "duplicate", res.Duplicate)
	return c.JSON(resp)
}
