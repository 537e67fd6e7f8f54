package handlers

import (
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/completion"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	sess, err := session.FromFiber(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, msgUnauthorized)
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	id, err := h.reportService.CreateReport(c.UserContext(), sess, req.IdeaDescription)
	if err != nil {
		return reportError(c, err)
	}

	report, err := h.reportService.GetReport(c.UserContext(), sess, id)
	if err != nil {
		return reportError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReportResponse(report))
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	sess, err := session.FromFiber(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, msgUnauthorized)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reports, total, err := h.reportService.ListReports(c.UserContext(), sess, limit, offset)
	if err != nil {
		return reportError(c, err)
	}

	resp := dto.ReportListResponse{
		Reports: make([]dto.ReportResponse, 0, len(reports)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	for i := range reports {
		resp.Reports = append(resp.Reports, toReportResponse(&reports[i]))
	}
	return c.JSON(resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	sess, id, err := h.target(c)
	if err != nil {
		return err
	}

	report, err := h.reportService.GetReport(c.UserContext(), sess, id)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(toReportResponse(report))
}

func (h *ReportHandler) Preview(c *fiber.Ctx) error {
	sess, id, err := h.target(c)
	if err != nil {
		return err
	}

	text, err := h.reportService.RequestPreview(c.UserContext(), sess, id)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(dto.ReportContentResponse{ReportID: id, Tier: string(completion.TierPreview), Content: text})
}

func (h *ReportHandler) Full(c *fiber.Ctx) error {
	sess, id, err := h.target(c)
	if err != nil {
		return err
	}

	text, err := h.reportService.RequestFullReport(c.UserContext(), sess, id)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(dto.ReportContentResponse{ReportID: id, Tier: string(completion.TierFull), Content: text})
}

func (h *ReportHandler) StartPayment(c *fiber.Ctx) error {
	sess, id, err := h.target(c)
	if err != nil {
		return err
	}

	inst, err := h.reportService.StartPayment(c.UserContext(), sess, id)
	if err != nil {
		return reportError(c, err)
	}
	return c.JSON(dto.PaymentInstructionsResponse{
		ReportID:     inst.ReportID,
		PaymentRef:   inst.PaymentRef,
		Amount:       inst.Amount,
		Currency:     inst.Currency,
		MerchantName: inst.MerchantName,
		Methods:      inst.Methods,
		Status:       inst.Status,
		RequestedAt:  inst.RequestedAt,
	})
}

// target resolves the caller and the :id param. Failures are *fiber.Error
// values rendered by ErrorHandler.
func (h *ReportHandler) target(c *fiber.Ctx) (session.Session, uuid.UUID, error) {
	sess, err := session.FromFiber(c)
	if err != nil {
		return session.Session{}, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, msgUnauthorized)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return session.Session{}, uuid.Nil, fiber.NewError(fiber.StatusNotFound, msgReportNotFound)
	}
	return sess, id, nil
}

func toReportResponse(r *models.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:              r.ID,
		IdeaDescription: r.IdeaDescription,
		IsPaid:          r.IsPaid,
		Status:          r.Status(),
		CreatedAt:       r.CreatedAt,
		PaidAt:          r.PaidAt,
	}
}
