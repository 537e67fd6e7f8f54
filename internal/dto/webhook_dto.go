package dto

import "time"

// QRISWebhook is the callback body sent by the QRIS payment gateway. The raw
// body is signed with HMAC-SHA256 in the X-QRIS-Signature header.
type QRISWebhook struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	PaymentRef string    `json:"payment_ref"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Issuer     string    `json:"issuer,omitempty"`
	PaidAt     time.Time `json:"paid_at"`
}

type WebhookResponse struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	ReportID  string `json:"report_id,omitempty"`
}
