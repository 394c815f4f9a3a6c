package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoicePaymentRepository implements invoice.PaymentRepository. The
// ledger is append-only: the only update stamps reversed_at.
type GormInvoicePaymentRepository struct {
	db *gorm.DB
}

func NewGormInvoicePaymentRepository(db *gorm.DB) *GormInvoicePaymentRepository {
	return &GormInvoicePaymentRepository{db: db}
}

func (r *GormInvoicePaymentRepository) Create(ctx context.Context, p *invoice.Payment) error {
	return r.db.WithContext(ctx).Create(models.InvoicePaymentModelFromDomain(p)).Error
}

func (r *GormInvoicePaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Payment, error) {
	var model models.InvoicePaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, notFound(err, "invoice payment")
	}
	return model.ToDomain(), nil
}

// FindByInvoice returns every entry of the invoice in ledger order.
func (r *GormInvoicePaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Payment, error) {
	var rows []models.InvoicePaymentModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]*invoice.Payment, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToDomain())
	}
	return entries, nil
}

// MarkReversed stamps reversed_at once. A second reversal of the same entry
// affects no rows and is reported as an invalid state.
func (r *GormInvoicePaymentRepository) MarkReversed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoicePaymentModel{}).
		Where("id = ? AND reversed_at IS NULL", id).
		Updates(map[string]any{"reversed_at": at.UTC(), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewInvalidStateError("payment is already reversed")
	}
	return nil
}

func (r *GormInvoicePaymentRepository) ExistsByExternalReference(ctx context.Context, invoiceID uuid.UUID, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoicePaymentModel{}).
		Where("invoice_id = ? AND external_reference = ? AND amount > 0", invoiceID, reference).
		Count(&count).Error
	return count > 0, err
}

var _ invoice.PaymentRepository = (*GormInvoicePaymentRepository)(nil)
