// Package store persists reports with GORM.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStore is the GORM-backed report repository. Lookups that find
// nothing return (nil, nil).
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

func (s *ReportStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (s *ReportStore) FindByPaymentRef(ctx context.Context, ref string) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).Where("payment_ref = ?", ref).Take(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// ListByOwner returns the owner's reports, newest first.
func (s *ReportStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Report, int64, error) {
	var total int64
	query := s.db.WithContext(ctx).Model(&models.Report{}).Where("user_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// MarkPaid flips is_paid to true with a single conditional update. It
// reports false when the report was already paid (or does not exist).
func (s *ReportStore) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, via string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]any{
			"is_paid":    true,
			"paid_at":    paidAt,
			"paid_via":   via,
			"updated_at": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetPaymentRef stores ref unless the report already has one or is paid.
func (s *ReportStore) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND payment_ref IS NULL AND is_paid = ?", id, false).
		Updates(map[string]any{
			"payment_ref":          ref,
			"payment_requested_at": at,
			"updated_at":           at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
