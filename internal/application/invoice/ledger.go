package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/invoice"
)

// ApplyPayment is the single write path for ledger payments. It must run
// inside a transaction: it locks the invoice row, reads every entry,
// appends the payment, recomputes and saves with the version check, and
// records invoice.payment_received in the outbox.
//
// A payment carrying a processor reference that is already on the invoice
// is skipped and reported as nil, so a capture seen twice posts once.
func ApplyPayment(ctx context.Context, repos uow.Repositories, invoiceID uuid.UUID, in invoice.NewPaymentInput, now time.Time) (*invoice.Payment, *invoice.Invoice, error) {
	inv, err := repos.Invoices().FindByIDForUpdate(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if in.Reference != "" {
		exists, err := repos.Payments().ExistsByExternalReference(ctx, inv.ID, in.Reference)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			return nil, inv, nil
		}
	}

	entries, err := repos.Payments().FindByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, nil, err
	}
	p, _, err := inv.AddPayment(in, entries, now)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Payments().Create(ctx, p); err != nil {
		return nil, nil, err
	}
	if err := repos.Invoices().Save(ctx, inv); err != nil {
		return nil, nil, err
	}
	if err := uow.RecordEvents(ctx, repos, inv); err != nil {
		return nil, nil, err
	}
	return p, inv, nil
}

// ApplyRefundReversal appends the negative entry for a refund of money that
// was posted to the invoice. It runs in the caller's transaction and locks
// the invoice row. A nil entry means nothing was left to reverse.
func ApplyRefundReversal(ctx context.Context, repos uow.Repositories, invoiceID uuid.UUID, amount int64, refundRef, reason string, now time.Time) (*invoice.Payment, error) {
	inv, err := repos.Invoices().FindByIDForUpdate(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	entries, err := repos.Payments().FindByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	rev, _, err := inv.AddRefundReversal(amount, refundRef, reason, entries, now)
	if err != nil || rev == nil {
		return nil, err
	}
	if err := repos.Payments().Create(ctx, rev); err != nil {
		return nil, err
	}
	if err := repos.Invoices().Save(ctx, inv); err != nil {
		return nil, err
	}
	return rev, nil
}
