package persistence

import (
	"context"

	"github.com/transitpay/settlement/internal/domain/notification"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationLogRepository implements notification.LogRepository using GORM
type GormNotificationLogRepository struct {
	db *gorm.DB
}

func NewGormNotificationLogRepository(db *gorm.DB) *GormNotificationLogRepository {
	return &GormNotificationLogRepository{db: db}
}

func (r *GormNotificationLogRepository) Create(ctx context.Context, log *notification.Log) error {
	return r.db.WithContext(ctx).Create(models.NotificationLogModelFromDomain(log)).Error
}

func (r *GormNotificationLogRepository) List(ctx context.Context, filter notification.LogFilter) ([]*notification.Log, int64, error) {
	f := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.NotificationLogModel{})
	if filter.Recipient != "" {
		query = query.Where("recipient = ?", filter.Recipient)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.NotificationLogModel
	if err := query.
		Order(orderClause(f.OrderBy, f.OrderDir, NotificationLogSortFields, "created_at")).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	logs := make([]*notification.Log, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].ToDomain())
	}
	return logs, total, nil
}

var _ notification.LogRepository = (*GormNotificationLogRepository)(nil)
