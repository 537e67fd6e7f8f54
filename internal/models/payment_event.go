package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PaymentEvent stores every gateway callback with deduplication metadata so
// redelivered events are acknowledged without being applied twice.
type PaymentEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Provider        string         `gorm:"size:20;not null;uniqueIndex:idx_payment_events_provider_event,priority:1" json:"provider"`
	ProviderEventID string         `gorm:"size:191;not null;uniqueIndex:idx_payment_events_provider_event,priority:2" json:"provider_event_id"`
	EventType       string         `gorm:"size:100;not null;index" json:"event_type"`
	PaymentRef      string         `gorm:"size:64;index" json:"payment_ref"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	SignatureValid  bool           `gorm:"default:false" json:"signature_valid"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	ProcessingError string         `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
