package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIntentRepository implements payment.IntentRepository using GORM
type GormIntentRepository struct {
	db *gorm.DB
}

// NewGormIntentRepository creates a new GormIntentRepository
func NewGormIntentRepository(db *gorm.DB) *GormIntentRepository {
	return &GormIntentRepository{db: db}
}

// Create inserts a new intent.
func (r *GormIntentRepository) Create(ctx context.Context, intent *payment.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(models.PaymentIntentModelFromDomain(intent)).Error
}

// FindByID finds an intent by its ID
func (r *GormIntentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentIntent, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDForUpdate finds and row-locks an intent.
func (r *GormIntentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*payment.PaymentIntent, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

// FindByExternalReferenceForUpdate finds and row-locks the intent created at
// the processor under reference.
func (r *GormIntentRepository) FindByExternalReferenceForUpdate(ctx context.Context, reference string) (*payment.PaymentIntent, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "external_reference = ?", reference)
}

func (r *GormIntentRepository) first(db *gorm.DB, query string, arg any) (*payment.PaymentIntent, error) {
	var model models.PaymentIntentModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		return nil, notFound(err, "payment intent")
	}
	return model.ToDomain(), nil
}

// Save writes the mutable intent fields guarded by the version.
func (r *GormIntentRepository) Save(ctx context.Context, intent *payment.PaymentIntent) error {
	intent.Touch(time.Now())
	m := models.PaymentIntentModelFromDomain(intent)
	err := saveVersioned(r.db.WithContext(ctx), &models.PaymentIntentModel{}, intent.ID, intent.Version, map[string]any{
		"external_reference": m.ExternalReference,
		"client_secret":      m.ClientSecret,
		"status":             m.Status,
		"payment_method_ref": m.PaymentMethodRef,
		"invoice_id":         m.InvoiceID,
		"captured_amount":    m.CapturedAmount,
		"refunded_amount":    m.RefundedAmount,
		"failure_reason":     m.FailureReason,
		"updated_at":         m.UpdatedAt,
	}, "payment intent")
	if err != nil {
		return err
	}
	intent.Version++
	return nil
}

var _ payment.IntentRepository = (*GormIntentRepository)(nil)
