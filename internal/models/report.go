package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report status values. Only IsPaid gates premium content; the status is
// derived for display.
const (
	ReportStatusDraft          = "DRAFT"
	ReportStatusPendingPayment = "PENDING_PAYMENT"
	ReportStatusPaid           = "PAID"
)

// Paid-via values recorded on the paid transition.
const (
	PaidViaGateway  = "gateway"
	PaidViaOperator = "operator"
)

// Report is a user's business idea submission and its payment state.
// Generated report text is never stored here.
type Report struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;index:idx_reports_user_created,priority:1" json:"user_id"`
	IdeaDescription    string     `gorm:"type:text;not null" json:"idea_description"`
	IsPaid             bool       `gorm:"not null;default:false" json:"is_paid"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	PaidVia            string     `gorm:"size:20" json:"-"`
	PaymentRef         *string    `gorm:"size:64;uniqueIndex" json:"-"`
	PaymentRequestedAt *time.Time `json:"-"`
	CreatedAt          time.Time  `gorm:"not null;index:idx_reports_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Status derives the lifecycle state from the stored fields.
func (r *Report) Status() string {
	switch {
	case r.IsPaid:
		return ReportStatusPaid
	case r.PaymentRef != nil:
		return ReportStatusPendingPayment
	default:
		return ReportStatusDraft
	}
}
