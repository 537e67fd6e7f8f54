package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	GatewayProvider       = "qris"
	EventPaymentSucceeded = "payment.succeeded"
	SignatureHeader       = "X-QRIS-Signature"
)

// PaymentConfirmation proves that a trusted party saw the payment. The zero
// value is rejected by ReportService.ConfirmPayment.
type PaymentConfirmation struct {
	via    string
	source string
}

func (c PaymentConfirmation) valid() bool { return c.via != "" && c.source != "" }

// Via is models.PaidViaGateway or models.PaidViaOperator.
func (c PaymentConfirmation) Via() string { return c.via }

// NewOperatorConfirmation is used for manual QRIS reconciliation by staff.
func NewOperatorConfirmation(operator string) (PaymentConfirmation, error) {
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return PaymentConfirmation{}, errors.New("operator is required")
	}
	return PaymentConfirmation{via: models.PaidViaOperator, source: "operator:" + operator}, nil
}

func gatewayConfirmation(eventID string) PaymentConfirmation {
	return PaymentConfirmation{via: models.PaidViaGateway, source: GatewayProvider + ":" + eventID}
}

// PaymentReportFinder resolves reports without an owner check.
type PaymentReportFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	FindByPaymentRef(ctx context.Context, ref string) (*models.Report, error)
}

type PaymentEventStore interface {
	Find(ctx context.Context, provider, eventID string) (*models.PaymentEvent, error)
	Create(ctx context.Context, ev *models.PaymentEvent) error
	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time, processingErr string) error
}

// GatewayResult describes what a callback did.
type GatewayResult struct {
	EventID   string
	ReportID  uuid.UUID
	Duplicate bool
	Ignored   bool
}

// PaymentService turns trusted payment signals into confirmations.
type PaymentService struct {
	reports *ReportService
	finder  PaymentReportFinder
	events  PaymentEventStore
	secret  []byte
	now     func() time.Time
}

func NewPaymentService(reports *ReportService, finder PaymentReportFinder, events PaymentEventStore, webhookSecret string) *PaymentService {
	return &PaymentService{
		reports: reports,
		finder:  finder,
		events:  events,
		secret:  []byte(webhookSecret),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SignPayload returns the hex HMAC-SHA256 of body.
func SignPayload(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) verify(body []byte, signature string) bool {
	if len(s.secret) == 0 || signature == "" {
		return false
	}
	expected := SignPayload(s.secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// HandleGatewayCallback verifies and applies a QRIS gateway callback.
// Redelivered events that were already processed are acknowledged as
// duplicates.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, rawBody []byte, signature string) (*GatewayResult, error) {
	if !s.verify(rawBody, signature) {
		return nil, ErrInvalidSignature
	}

	var payload dto.QRISWebhook
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %w", ErrValidation, err)
	}
	if payload.EventID == "" || payload.EventType == "" {
		return nil, fmt.Errorf("%w: event_id and event_type are required", ErrValidation)
	}

	result := &GatewayResult{EventID: payload.EventID}

	ev, err := s.recordEvent(ctx, &payload, rawBody)
	if err != nil {
		return nil, err
	}
	if ev.ProcessedAt != nil {
		result.Duplicate = true
		slog.Info("duplicate payment event", "event_id", payload.EventID, "payment_ref", payload.PaymentRef)
		return result, nil
	}

	if payload.EventType != EventPaymentSucceeded {
		result.Ignored = true
		s.markProcessed(ctx, ev, nil)
		return result, nil
	}

	report, err := s.applySucceeded(ctx, &payload)
	s.markProcessed(ctx, ev, err)
	if err != nil {
		return nil, err
	}
	result.ReportID = report.ID
	return result, nil
}

func (s *PaymentService) applySucceeded(ctx context.Context, payload *dto.QRISWebhook) (*models.Report, error) {
	amount, currency := s.reports.paymentAmount()
	if payload.Amount != amount || !strings.EqualFold(payload.Currency, currency) {
		return nil, fmt.Errorf("%w: amount mismatch: got %d %s, want %d %s",
			ErrValidation, payload.Amount, payload.Currency, amount, currency)
	}
	if payload.PaymentRef == "" {
		return nil, fmt.Errorf("%w: payment_ref is required", ErrValidation)
	}

	report, err := s.finder.FindByPaymentRef(ctx, payload.PaymentRef)
	if err != nil {
		return nil, fmt.Errorf("%w: find by ref: %w", ErrStore, err)
	}
	if report == nil {
		return nil, fmt.Errorf("%w: unknown payment_ref %q", ErrNotFound, payload.PaymentRef)
	}

	return s.reports.ConfirmPayment(ctx, report.UserID, report.ID, gatewayConfirmation(payload.EventID))
}

// recordEvent stores the callback, or returns the stored copy of a
// redelivered event.
func (s *PaymentService) recordEvent(ctx context.Context, payload *dto.QRISWebhook, rawBody []byte) (*models.PaymentEvent, error) {
	existing, err := s.events.Find(ctx, GatewayProvider, payload.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: find event: %w", ErrStore, err)
	}
	if existing != nil {
		return existing, nil
	}

	ev := &models.PaymentEvent{
		ID:              uuid.New(),
		Provider:        GatewayProvider,
		ProviderEventID: payload.EventID,
		EventType:       payload.EventType,
		PaymentRef:      payload.PaymentRef,
		Payload:         datatypes.JSON(rawBody),
		SignatureValid:  true,
	}
	if err := s.events.Create(ctx, ev); err != nil {
		// Lost a race with a concurrent delivery of the same event.
		if again, findErr := s.events.Find(ctx, GatewayProvider, payload.EventID); findErr == nil && again != nil {
			return again, nil
		}
		return nil, fmt.Errorf("%w: record event: %w", ErrStore, err)
	}
	return ev, nil
}

func (s *PaymentService) markProcessed(ctx context.Context, ev *models.PaymentEvent, procErr error) {
	msg := ""
	if procErr != nil {
		msg = procErr.Error()
		slog.Error("payment event failed", "event_id", ev.ProviderEventID, "payment_ref", ev.PaymentRef, "error", procErr)
	}
	if err := s.events.MarkProcessed(ctx, ev.ID, s.now(), msg); err != nil {
		slog.Error("failed to mark payment event", "event_id", ev.ProviderEventID, "error", err)
	}
}

// ConfirmByOperator marks a report paid after a staff member reconciled the
// QRIS transfer by hand.
func (s *PaymentService) ConfirmByOperator(ctx context.Context, reportID uuid.UUID, operator string) (*models.Report, error) {
	conf, err := NewOperatorConfirmation(operator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	report, err := s.finder.FindByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %w", ErrStore, err)
	}
	if report == nil {
		return nil, ErrNotFound
	}
	return s.reports.ConfirmPayment(ctx, report.UserID, report.ID, conf)
}
