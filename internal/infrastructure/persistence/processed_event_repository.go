package persistence

import (
	"context"
	"time"

	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProcessedEventRepository records applied webhook events.
type GormProcessedEventRepository struct {
	db *gorm.DB
}

func NewGormProcessedEventRepository(db *gorm.DB) *GormProcessedEventRepository {
	return &GormProcessedEventRepository{db: db}
}

// MarkProcessed inserts the event id with ON CONFLICT DO NOTHING. A
// concurrent delivery of the same event blocks on the primary key until the
// first transaction ends, then sees zero affected rows.
func (r *GormProcessedEventRepository) MarkProcessed(ctx context.Context, externalEventID, eventType string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedWebhookEventModel{
			ExternalEventID: externalEventID,
			EventType:       eventType,
			ProcessedAt:     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteOlderThan prunes records past the redelivery window.
func (r *GormProcessedEventRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("processed_at < ?", before).
		Delete(&models.ProcessedWebhookEventModel{})
	return result.RowsAffected, result.Error
}

var _ payment.ProcessedEventRepository = (*GormProcessedEventRepository)(nil)
