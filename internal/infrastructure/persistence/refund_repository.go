package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRefundRepository implements payment.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// Create inserts a refund. The unique index on external_reference rejects a
// second row for the same processor refund.
func (r *GormRefundRepository) Create(ctx context.Context, refund *payment.Refund) error {
	return r.db.WithContext(ctx).Create(models.RefundModelFromDomain(refund)).Error
}

// FindByExternalReference returns nil, nil when no refund carries reference.
func (r *GormRefundRepository) FindByExternalReference(ctx context.Context, reference string) (*payment.Refund, error) {
	var model models.RefundModel
	err := r.db.WithContext(ctx).Where("external_reference = ?", reference).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIntent lists refunds of an intent, oldest first.
func (r *GormRefundRepository) FindByIntent(ctx context.Context, intentID uuid.UUID) ([]*payment.Refund, error) {
	var rows []models.RefundModel
	if err := r.db.WithContext(ctx).
		Where("source_intent_id = ?", intentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	refunds := make([]*payment.Refund, 0, len(rows))
	for i := range rows {
		refunds = append(refunds, rows[i].ToDomain())
	}
	return refunds, nil
}

var _ payment.RefundRepository = (*GormRefundRepository)(nil)
