package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	IdeaDescription string `json:"idea_description"`
}

type ReportResponse struct {
	ID              uuid.UUID  `json:"id"`
	IdeaDescription string     `json:"idea_description"`
	IsPaid          bool       `json:"is_paid"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ReportContentResponse carries generated text. It is never stored.
type ReportContentResponse struct {
	ReportID uuid.UUID `json:"report_id"`
	Tier     string    `json:"tier"`
	Content  string    `json:"content"`
}

type PaymentInstructionsResponse struct {
	ReportID     uuid.UUID `json:"report_id"`
	PaymentRef   string    `json:"payment_ref"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	MerchantName string    `json:"merchant_name"`
	Methods      []string  `json:"methods"`
	Status       string    `json:"status"`
	RequestedAt  time.Time `json:"requested_at"`
}

type AdminConfirmPaymentRequest struct {
	Note string `json:"note,omitempty"`
}
