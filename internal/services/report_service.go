package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/completion"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/session"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ReportStore is the persistence the lifecycle needs. FindByID returns
// (nil, nil) for an unknown id.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Report, int64, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, via string) (bool, error)
	SetPaymentRef(ctx context.Context, id uuid.UUID, ref string, at time.Time) (bool, error)
}

// PreviewCache holds recently generated previews. Failures are logged and
// never fail the request.
type PreviewCache interface {
	Get(ctx context.Context, reportID uuid.UUID) (string, bool, error)
	Set(ctx context.Context, reportID uuid.UUID, text string) error
}

// PaymentSettings describes the single premium product.
type PaymentSettings struct {
	Amount       int64
	Currency     string
	MerchantName string
}

var DefaultPaymentSettings = PaymentSettings{Amount: 25000, Currency: "IDR", MerchantName: "IdeBisnisAI"}

// QRISMethods are the wallets and apps that can pay a QRIS code.
var QRISMethods = []string{"GoPay", "OVO", "DANA", "ShopeePay", "LinkAja", "Mobile Banking"}

// PaymentInstructions is what the payer needs to complete a QRIS payment.
type PaymentInstructions struct {
	ReportID     uuid.UUID
	PaymentRef   string
	Amount       int64
	Currency     string
	MerchantName string
	Methods      []string
	Status       string
	RequestedAt  time.Time
}

// ReportService owns the report lifecycle: draft, preview, payment gate
// and full report.
type ReportService struct {
	store    ReportStore
	provider completion.Provider
	cache    PreviewCache
	filter   *ContentFilter
	payment  PaymentSettings
	now      func() time.Time
	previews singleflight.Group
	// previewTimeout bounds a shared preview call, which outlives the
	// request that started it.
	previewTimeout time.Duration
}

type ReportOption func(*ReportService)

func WithPreviewCache(c PreviewCache) ReportOption {
	return func(s *ReportService) { s.cache = c }
}

func WithPaymentSettings(p PaymentSettings) ReportOption {
	return func(s *ReportService) { s.payment = p }
}

func WithPreviewTimeout(d time.Duration) ReportOption {
	return func(s *ReportService) { s.previewTimeout = d }
}

func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(store ReportStore, provider completion.Provider, opts ...ReportOption) *ReportService {
	s := &ReportService{
		store:    store,
		provider: provider,
		filter:   NewContentFilter(),
		payment:  DefaultPaymentSettings,
		now:      func() time.Time { return time.Now().UTC() },

		previewTimeout: 3 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReport stores a new unpaid report for the caller.
func (s *ReportService) CreateReport(ctx context.Context, sess session.Session, ideaText string) (uuid.UUID, error) {
	if sess.IsZero() {
		return uuid.Nil, fmt.Errorf("%w: no session", ErrAccessDenied)
	}
	idea := strings.TrimSpace(ideaText)
	if reason := s.filter.Check(idea); reason != "" {
		return uuid.Nil, &ValidationError{Reason: reason}
	}

	report := &models.Report{
		ID:              uuid.New(),
		UserID:          sess.UserID,
		IdeaDescription: idea,
		IsPaid:          false,
		CreatedAt:       s.now(),
	}
	if err := s.store.Create(ctx, report); err != nil {
		return uuid.Nil, fmt.Errorf("%w: create: %w", ErrStore, err)
	}

	slog.Info("report created", "report_id", report.ID, "user_id", sess.UserID)
	return report.ID, nil
}

// GetReport returns the report if the caller owns it.
func (s *ReportService) GetReport(ctx context.Context, sess session.Session, reportID uuid.UUID) (*models.Report, error) {
	return s.load(ctx, sess.UserID, reportID)
}

// ListReports returns the caller's reports, newest first.
func (s *ReportService) ListReports(ctx context.Context, sess session.Session, limit, offset int) ([]models.Report, int64, error) {
	if sess.IsZero() {
		return nil, 0, fmt.Errorf("%w: no session", ErrAccessDenied)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	reports, total, err := s.store.ListByOwner(ctx, sess.UserID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list: %w", ErrStore, err)
	}
	return reports, total, nil
}

// RequestPreview generates the short free analysis. Concurrent requests for
// the same report share one provider call.
func (s *ReportService) RequestPreview(ctx context.Context, sess session.Session, reportID uuid.UUID) (string, error) {
	report, err := s.load(ctx, sess.UserID, reportID)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		text, ok, err := s.cache.Get(ctx, report.ID)
		if err != nil {
			slog.Warn("preview cache read failed", "report_id", report.ID, "error", err)
		} else if ok {
			return text, nil
		}
	}

	// The shared call is detached from any one caller, so a client that
	// disconnects does not fail the others waiting on it.
	ch := s.previews.DoChan(report.ID.String(), func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.previewTimeout)
		defer cancel()

		text, err := s.provider.Complete(callCtx, previewRequest(report.IdeaDescription))
		if err != nil {
			return "", err
		}
		if s.cache != nil {
			if err := s.cache.Set(callCtx, report.ID, text); err != nil {
				slog.Warn("preview cache write failed", "report_id", report.ID, "error", err)
			}
		}
		return text, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("%w: preview: %w", ErrProvider, res.Err)
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("preview: %w", ctx.Err())
	}
}

// RequestFullReport generates the premium report. The paid flag is read from
// the store on every call.
func (s *ReportService) RequestFullReport(ctx context.Context, sess session.Session, reportID uuid.UUID) (string, error) {
	report, err := s.load(ctx, sess.UserID, reportID)
	if err != nil {
		return "", err
	}
	if !report.IsPaid {
		return "", ErrPaymentRequired
	}

	text, err := s.provider.Complete(ctx, fullRequest(report.IdeaDescription))
	if err != nil {
		return "", fmt.Errorf("%w: full report: %w", ErrProvider, err)
	}
	slog.Info("full report generated", "report_id", report.ID, "user_id", sess.UserID)
	return text, nil
}

// StartPayment issues the payment reference for a report, or returns the one
// already issued.
func (s *ReportService) StartPayment(ctx context.Context, sess session.Session, reportID uuid.UUID) (*PaymentInstructions, error) {
	report, err := s.load(ctx, sess.UserID, reportID)
	if err != nil {
		return nil, err
	}
	if report.IsPaid {
		return nil, ErrAlreadyPaid
	}

	if report.PaymentRef == nil {
		now := s.now()
		set, err := s.store.SetPaymentRef(ctx, report.ID, newPaymentRef(), now)
		if err != nil {
			return nil, fmt.Errorf("%w: set payment ref: %w", ErrStore, err)
		}
		// Reload either way: a concurrent call may have won the update.
		report, err = s.load(ctx, sess.UserID, reportID)
		if err != nil {
			return nil, err
		}
		if report.IsPaid {
			return nil, ErrAlreadyPaid
		}
		if set {
			slog.Info("payment started", "report_id", report.ID, "user_id", sess.UserID, "payment_ref", *report.PaymentRef)
		}
	}

	inst := &PaymentInstructions{
		ReportID:     report.ID,
		PaymentRef:   *report.PaymentRef,
		Amount:       s.payment.Amount,
		Currency:     s.payment.Currency,
		MerchantName: s.payment.MerchantName,
		Methods:      QRISMethods,
		Status:       report.Status(),
	}
	if report.PaymentRequestedAt != nil {
		inst.RequestedAt = *report.PaymentRequestedAt
	}
	return inst, nil
}

// ConfirmPayment marks the report paid. Only a PaymentConfirmation minted by
// a trusted producer is accepted. Confirming a paid report is a no-op.
func (s *ReportService) ConfirmPayment(ctx context.Context, ownerID, reportID uuid.UUID, conf PaymentConfirmation) (*models.Report, error) {
	if !conf.valid() {
		return nil, fmt.Errorf("%w: unverified payment confirmation", ErrAccessDenied)
	}
	report, err := s.load(ctx, ownerID, reportID)
	if err != nil {
		return nil, err
	}
	if report.IsPaid {
		return report, nil
	}

	changed, err := s.store.MarkPaid(ctx, report.ID, s.now(), conf.via)
	if err != nil {
		return nil, fmt.Errorf("%w: mark paid: %w", ErrStore, err)
	}
	if changed {
		slog.Info("report paid", "report_id", report.ID, "user_id", ownerID, "paid_via", conf.via, "source", conf.source)
	}
	return s.load(ctx, ownerID, reportID)
}

// paymentAmount is the amount a gateway callback must report.
func (s *ReportService) paymentAmount() (int64, string) {
	return s.payment.Amount, s.payment.Currency
}

func (s *ReportService) load(ctx context.Context, ownerID, reportID uuid.UUID) (*models.Report, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: no session", ErrAccessDenied)
	}
	report, err := s.store.FindByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %w", ErrStore, err)
	}
	if report == nil {
		return nil, ErrNotFound
	}
	if report.UserID != ownerID {
		slog.Warn("report access denied", "report_id", reportID, "user_id", ownerID)
		return nil, ErrAccessDenied
	}
	return report, nil
}

func newPaymentRef() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "IDB-" + strings.ToUpper(raw[:16])
}
