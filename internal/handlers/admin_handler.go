package handlers

import (
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	paymentService *services.PaymentService
}

func NewAdminHandler(paymentService *services.PaymentService) *AdminHandler {
	return &AdminHandler{paymentService: paymentService}
}

// ConfirmPayment marks a report paid after manual QRIS reconciliation.
func (h *AdminHandler) ConfirmPayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, msgReportNotFound)
	}

	operator, _ := c.Locals(middleware.OperatorLocal).(string)
	report, err := h.paymentService.ConfirmByOperator(c.UserContext(), id, operator)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(toReportResponse(report))
}
