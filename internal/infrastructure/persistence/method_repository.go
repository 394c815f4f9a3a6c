package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMethodRepository implements payment.MethodRepository using GORM
type GormMethodRepository struct {
	db *gorm.DB
}

// NewGormMethodRepository creates a new GormMethodRepository
func NewGormMethodRepository(db *gorm.DB) *GormMethodRepository {
	return &GormMethodRepository{db: db}
}

func (r *GormMethodRepository) Create(ctx context.Context, method *payment.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(models.PaymentMethodModelFromDomain(method)).Error
}

func (r *GormMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err, "payment method")
	}
	return model.ToDomain(), nil
}

// FindByOwner returns every method of the owner in insertion order.
func (r *GormMethodRepository) FindByOwner(ctx context.Context, ownerID string) ([]*payment.PaymentMethod, error) {
	var rows []models.PaymentMethodModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	methods := make([]*payment.PaymentMethod, 0, len(rows))
	for i := range rows {
		methods = append(methods, rows[i].ToDomain())
	}
	return methods, nil
}

func (r *GormMethodRepository) FindByExternalReference(ctx context.Context, ownerID, reference string) (*payment.PaymentMethod, error) {
	return r.optional(r.db.WithContext(ctx).Where("owner_id = ? AND external_reference = ?", ownerID, reference))
}

func (r *GormMethodRepository) FindDefault(ctx context.Context, ownerID string) (*payment.PaymentMethod, error) {
	return r.optional(r.db.WithContext(ctx).Where("owner_id = ? AND is_default = ?", ownerID, true))
}

func (r *GormMethodRepository) optional(q *gorm.DB) (*payment.PaymentMethod, error) {
	var model models.PaymentMethodModel
	err := q.First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormMethodRepository) ClearDefault(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentMethodModel{}).
		Where("owner_id = ? AND is_default = ?", ownerID, true).
		Updates(map[string]any{"is_default": false, "updated_at": time.Now().UTC()}).Error
}

func (r *GormMethodRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentMethodModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_default": true, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "payment method")
	}
	return nil
}

func (r *GormMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PaymentMethodModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "payment method")
	}
	return nil
}

var _ payment.MethodRepository = (*GormMethodRepository)(nil)
