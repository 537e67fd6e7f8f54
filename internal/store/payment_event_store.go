package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentEventStore records gateway callbacks for idempotent processing.
type PaymentEventStore struct {
	db *gorm.DB
}

func NewPaymentEventStore(db *gorm.DB) *PaymentEventStore {
	return &PaymentEventStore{db: db}
}

// Find returns the stored event for (provider, eventID) or nil.
func (s *PaymentEventStore) Find(ctx context.Context, provider, eventID string) (*models.PaymentEvent, error) {
	var ev models.PaymentEvent
	err := s.db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", provider, eventID).
		Take(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

func (s *PaymentEventStore) Create(ctx context.Context, ev *models.PaymentEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(ev).Error
}

// MarkProcessed records the outcome of applying an event. An empty
// processingErr means success.
func (s *PaymentEventStore) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time, processingErr string) error {
	updates := map[string]any{
		"processing_error": processingErr,
		"updated_at":       at,
	}
	if processingErr == "" {
		updates["processed_at"] = at
	}
	return s.db.WithContext(ctx).
		Model(&models.PaymentEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}
