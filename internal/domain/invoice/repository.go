package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
)

// Repository persists invoices. Lookups return a not-found DomainError when
// no row matches.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate locks the invoice row until the surrounding
	// transaction ends. Every ledger writer goes through it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	// Save updates an existing invoice guarded by its version.
	Save(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter ListFilter) ([]*Invoice, int64, error)
	// FindReminderCandidates returns sent, unpaid, unreminded invoices due on
	// or before dueBefore.
	FindReminderCandidates(ctx context.Context, dueBefore time.Time) ([]uuid.UUID, error)
	// FindOverdueCandidates returns unpaid invoices past due that have not
	// had an overdue notice.
	FindOverdueCandidates(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// ListFilter narrows an invoice listing. With AsOf set, Status matches the
// status the invoice has at that instant rather than the stored column.
type ListFilter struct {
	shared.Filter
	Status      Status
	FacilityRef string
	AsOf        time.Time
}

// PaymentRepository persists ledger entries.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
	MarkReversed(ctx context.Context, id uuid.UUID, at time.Time) error
	// ExistsByExternalReference reports whether a positive entry with this
	// processor reference is already on the invoice.
	ExistsByExternalReference(ctx context.Context, invoiceID uuid.UUID, reference string) (bool, error)
}
