package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(inv)).Error
}

func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.first(forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return r.first(r.db.WithContext(ctx), "invoice_number = ?", number)
}

func (r *GormInvoiceRepository) first(db *gorm.DB, query string, arg any) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := db.Where(query, arg).First(&model).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	return model.ToDomain(), nil
}

// Save writes the derived totals and lifecycle timestamps guarded by the
// version. Totals and identity columns set at creation are never rewritten.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	inv.Touch(time.Now())
	err := saveVersioned(r.db.WithContext(ctx), &models.InvoiceModel{}, inv.ID, inv.Version, map[string]any{
		"billing_email":       inv.BillingEmail,
		"amount_paid":         inv.AmountPaid,
		"amount_due":          inv.AmountDue,
		"status":              string(inv.Status),
		"sent_at":             inv.SentAt,
		"viewed_at":           inv.ViewedAt,
		"reminder_sent_at":    inv.ReminderSentAt,
		"overdue_notified_at": inv.OverdueNotifiedAt,
		"updated_at":          inv.UpdatedAt,
	}, "invoice")
	if err != nil {
		return err
	}
	inv.Version++
	return nil
}

// List returns one page of invoices and the total match count.
func (r *GormInvoiceRepository) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, int64, error) {
	f := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = query.Scopes(statusAsOf(filter.Status, filter.AsOf))
	if filter.FacilityRef != "" {
		query = query.Where("facility_ref = ?", filter.FacilityRef)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvoiceModel
	if err := query.
		Order(orderClause(f.OrderBy, f.OrderDir, InvoiceSortFields, "created_at")).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for i := range rows {
		invoices = append(invoices, rows[i].ToDomain())
	}
	return invoices, total, nil
}

// pastDueSQL mirrors the OVERDUE rule of invoice.Recompute over the stored
// totals.
const pastDueSQL = "amount_due > 0 AND due_date < ? AND (sent_at IS NOT NULL OR amount_paid > 0)"

// statusAsOf filters by the status an invoice has at asOf. A stored status
// only goes stale by becoming OVERDUE, so OVERDUE matches on the rule itself
// and every other status excludes rows the rule now claims.
func statusAsOf(status invoice.Status, asOf time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case status == "":
			return db
		case asOf.IsZero():
			return db.Where("status = ?", string(status))
		case status == invoice.StatusOverdue:
			return db.Where(pastDueSQL, asOf)
		default:
			return db.Where("status = ? AND NOT ("+pastDueSQL+")", string(status), asOf)
		}
	}
}

func (r *GormInvoiceRepository) FindReminderCandidates(ctx context.Context, dueBefore time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("sent_at IS NOT NULL AND reminder_sent_at IS NULL AND amount_due > 0 AND amount_paid = 0 AND due_date <= ?", dueBefore).
		Order("due_date ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("overdue_notified_at IS NULL AND amount_due > 0 AND due_date < ?", now).
		Order("due_date ASC").
		Pluck("id", &ids).Error
	return ids, err
}

var _ invoice.Repository = (*GormInvoiceRepository)(nil)
