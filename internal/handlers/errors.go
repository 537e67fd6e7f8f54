package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	msgInvalidBody     = "Format permintaan tidak valid"
	msgUnauthorized    = "Silakan masuk terlebih dahulu"
	msgReportNotFound  = "Laporan tidak ditemukan"
	msgPaymentRequired = "Pembayaran diperlukan untuk mengakses laporan lengkap"
	msgAlreadyPaid     = "Laporan ini sudah dibayar"
	msgProviderFailed  = "Gagal membuat analisis, silakan coba lagi"
	msgInternal        = "Terjadi kesalahan pada server"
)

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

// reportError maps lifecycle errors to HTTP responses. Unknown and missing
// reports share the same 404 so ownership is not revealed.
func reportError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return errorJSON(c, fiber.StatusBadRequest, services.RejectionMessage(ve.Reason))
	case errors.Is(err, services.ErrValidation):
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrAccessDenied):
		return errorJSON(c, fiber.StatusNotFound, msgReportNotFound)
	case errors.Is(err, services.ErrPaymentRequired):
		return errorJSON(c, fiber.StatusPaymentRequired, msgPaymentRequired)
	case errors.Is(err, services.ErrAlreadyPaid):
		return errorJSON(c, fiber.StatusConflict, msgAlreadyPaid)
	case errors.Is(err, services.ErrProvider):
		slog.Error("completion failed", "path", c.Path(), "request_id", requestID(c), "error", err)
		return errorJSON(c, fiber.StatusBadGateway, msgProviderFailed)
	default:
		slog.Error("request failed", "path", c.Path(), "request_id", requestID(c), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, msgInternal)
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// ErrorHandler renders errors returned from handlers. Details of 5xx errors
// are logged and never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := msgInternal
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "request_id", requestID(c), "error", err.Error())
		message = msgInternal
	}

	return errorJSON(c, code, message)
}
