package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/printing"
	"github.com/transitpay/settlement/internal/infrastructure/telemetry"
)

// DocumentRenderer turns an invoice and its ledger into a PDF.
type DocumentRenderer interface {
	Render(ctx context.Context, inv *invoice.Invoice, entries []*invoice.Payment) (*printing.Document, error)
}

// ErrDocumentsDisabled is returned by Document when no renderer is configured.
var ErrDocumentsDisabled = shared.NewDomainError("DOCUMENTS_DISABLED", "invoice documents are not enabled")

// LedgerService owns every invoice mutation. Writers lock the invoice row
// and retry the whole transaction when a version check loses a race.
type LedgerService struct {
	scope              uow.TransactionScope
	reads              uow.Repositories
	documents          DocumentRenderer
	metrics            *telemetry.SettlementMetrics
	reminderDaysBefore int
	retries            int
	now                func() time.Time
	logger             *zap.Logger
}

// LedgerServiceConfig wires a LedgerService.
type LedgerServiceConfig struct {
	Scope uow.TransactionScope
	// Reads serves queries outside a transaction.
	Reads              uow.Repositories
	Documents          DocumentRenderer
	Metrics            *telemetry.SettlementMetrics
	ReminderDaysBefore int
	Logger             *zap.Logger
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(cfg LedgerServiceConfig) *LedgerService {
	if cfg.ReminderDaysBefore <= 0 {
		cfg.ReminderDaysBefore = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &LedgerService{
		scope:              cfg.Scope,
		reads:              cfg.Reads,
		documents:          cfg.Documents,
		metrics:            cfg.Metrics,
		reminderDaysBefore: cfg.ReminderDaysBefore,
		retries:            uow.DefaultConflictRetries,
		now:                time.Now,
		logger:             cfg.Logger.Named("ledger"),
	}
}

// CreateInvoice creates a DRAFT invoice.
func (s *LedgerService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := invoice.NewInvoice(invoice.NewInvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		FacilityRef:   req.FacilityRef,
		FacilityName:  req.FacilityName,
		BillingEmail:  req.BillingEmail,
		Currency:      req.Currency,
		TotalAmount:   req.TotalAmount,
		DueDate:       req.DueDate,
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.reads.Invoices().FindByNumber(ctx, inv.InvoiceNumber)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("invoice %s already exists", inv.InvoiceNumber))
	}
	if err != nil && shared.KindOf(err) != shared.KindNotFound {
		return nil, err
	}

	if err := s.reads.Invoices().Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	logger.Enrich(logger.WithInvoiceID(ctx, inv.ID.String()), s.logger).Info("Invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int64("total_amount", inv.TotalAmount))

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetInvoice returns an invoice with its totals and status derived from the
// ledger as of now. Nothing is written.
func (s *LedgerService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.reads.Invoices().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.reads.Payments().FindByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Refresh(entries, s.now())
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// ListInvoices returns one page of invoices. Status, both as a filter and in
// the results, is the status as of now.
func (s *LedgerService) ListInvoices(ctx context.Context, req ListInvoicesRequest) (shared.Paginated[InvoiceResponse], error) {
	now := s.now()
	filter := invoice.ListFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		}.Normalize(),
		Status:      invoice.Status(req.Status),
		FacilityRef: req.FacilityRef,
		AsOf:        now,
	}
	items, total, err := s.reads.Invoices().List(ctx, filter)
	if err != nil {
		return shared.Paginated[InvoiceResponse]{}, err
	}
	out := make([]InvoiceResponse, len(items))
	for i, inv := range items {
		inv.Age(now)
		out[i] = ToInvoiceResponse(inv)
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// ListPayments returns every ledger entry of an invoice in posting order.
func (s *LedgerService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	inv, err := s.reads.Invoices().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	entries, err := s.reads.Payments().FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(entries, inv.Currency), nil
}

// SendInvoice stamps the first send and queues the INVOICE_SENT mail. Later
// calls return the invoice unchanged.
func (s *LedgerService) SendInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.mutate(ctx, id, func(ctx context.Context, repos uow.Repositories, inv *invoice.Invoice, entries []*invoice.Payment) (bool, error) {
		if inv.BillingEmail == "" {
			return false, shared.NewValidationError("invoice has no billing email")
		}
		return inv.MarkSent(entries, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// MarkViewed stamps the first view of a sent invoice.
func (s *LedgerService) MarkViewed(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.mutate(ctx, id, func(ctx context.Context, repos uow.Repositories, inv *invoice.Invoice, entries []*invoice.Payment) (bool, error) {
		before := inv.ViewedAt
		if err := inv.MarkViewed(entries, s.now()); err != nil {
			return false, err
		}
		return before == nil, nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// RecordPayment records money received against an invoice. An amount above
// the balance is rejected.
func (s *LedgerService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	ctx = logger.WithInvoiceID(ctx, invoiceID.String())
	ctx, span := telemetry.StartSpan(ctx, "ledger.record_payment", telemetry.AttrPaymentMethod.String(req.Method))

	in := invoice.NewPaymentInput{
		Amount:    req.Amount,
		Method:    invoice.PaymentMethod(req.Method),
		Reference: req.Reference,
		Notes:     req.Notes,
	}
	if req.PaymentDate != nil {
		in.PaymentDate = *req.PaymentDate
	}

	var (
		recorded *invoice.Payment
		inv      *invoice.Invoice
	)
	err := uow.ExecuteWithRetry(ctx, s.scope, s.retries, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		recorded, inv, err = ApplyPayment(ctx, repos, invoiceID, in, s.now())
		if err != nil {
			return err
		}
		if recorded == nil {
			return shared.NewValidationError(fmt.Sprintf("payment reference %s is already recorded on this invoice", in.Reference))
		}
		return nil
	})
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLedgerPayment(ctx, string(recorded.Method), string(inv.Currency), recorded.Amount)
	logger.Enrich(ctx, s.logger).Info("Payment recorded",
		zap.String("payment_id", recorded.ID.String()),
		zap.Int64("amount", recorded.Amount),
		zap.String("method", string(recorded.Method)),
		zap.Int64("amount_due", inv.AmountDue),
		zap.String("status", string(inv.Status)))

	resp := ToPaymentResponse(recorded, inv.Currency)
	return &resp, nil
}

// RemovePayment reverses a ledger entry by appending its negative and
// stamping the original.
func (s *LedgerService) RemovePayment(ctx context.Context, paymentID uuid.UUID, notes string) (*PaymentResponse, error) {
	target, err := s.reads.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithInvoiceID(ctx, target.InvoiceID.String())

	var (
		reversal *invoice.Payment
		inv      *invoice.Invoice
	)
	err = uow.ExecuteWithRetry(ctx, s.scope, s.retries, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		inv, err = repos.Invoices().FindByIDForUpdate(ctx, target.InvoiceID)
		if err != nil {
			return err
		}
		entries, err := repos.Payments().FindByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		original := invoice.FindEntry(entries, paymentID)
		if original == nil {
			return shared.NewNotFoundError("payment")
		}
		now := s.now()
		reversal, _, err = inv.ReversePayment(original, notes, entries, now)
		if err != nil {
			return err
		}
		if err := repos.Payments().MarkReversed(ctx, original.ID, now); err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, reversal); err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Payment reversed",
		zap.String("payment_id", paymentID.String()),
		zap.String("reversal_id", reversal.ID.String()),
		zap.Int64("amount_due", inv.AmountDue))

	resp := ToPaymentResponse(reversal, inv.Currency)
	return &resp, nil
}

// Document renders the invoice PDF.
func (s *LedgerService) Document(ctx context.Context, id uuid.UUID) (*printing.Document, error) {
	if s.documents == nil {
		return nil, ErrDocumentsDisabled
	}
	inv, err := s.reads.Invoices().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.reads.Payments().FindByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Refresh(entries, s.now())
	return s.documents.Render(ctx, inv, entries)
}

// SweepReminders stamps reminders for invoices entering the reminder window
// and overdue notices for invoices past due. Each invoice is handled in its
// own locked transaction; the stamps keep a rerun from notifying twice.
func (s *LedgerService) SweepReminders(ctx context.Context, now time.Time) (reminded, overdue int, err error) {
	dueBefore := now.AddDate(0, 0, s.reminderDaysBefore)
	reminderIDs, err := s.reads.Invoices().FindReminderCandidates(ctx, dueBefore)
	if err != nil {
		return 0, 0, fmt.Errorf("find reminder candidates: %w", err)
	}
	overdueIDs, err := s.reads.Invoices().FindOverdueCandidates(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("find overdue candidates: %w", err)
	}

	var errs []error
	for _, id := range reminderIDs {
		sent, err := s.stamp(ctx, id, now, func(inv *invoice.Invoice) bool {
			if !inv.DueForReminder(now, s.reminderDaysBefore) {
				return false
			}
			inv.MarkReminderSent(now)
			return true
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder %s: %w", id, err))
			continue
		}
		if sent {
			reminded++
		}
	}
	for _, id := range overdueIDs {
		sent, err := s.stamp(ctx, id, now, func(inv *invoice.Invoice) bool {
			if !inv.DueForOverdueNotice() {
				return false
			}
			inv.MarkOverdueNotified(now)
			return true
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("overdue %s: %w", id, err))
			continue
		}
		if sent {
			overdue++
		}
	}

	s.logger.Info("Reminder sweep finished",
		zap.Int("reminder_candidates", len(reminderIDs)),
		zap.Int("overdue_candidates", len(overdueIDs)),
		zap.Int("reminded", reminded),
		zap.Int("overdue", overdue),
		zap.Int("failed", len(errs)))
	return reminded, overdue, errors.Join(errs...)
}

// stamp recomputes the locked invoice as of now and applies mark. Nothing is
// written when mark reports false.
func (s *LedgerService) stamp(ctx context.Context, id uuid.UUID, now time.Time, mark func(inv *invoice.Invoice) bool) (bool, error) {
	var marked bool
	_, err := s.mutateAt(ctx, id, now, func(_ context.Context, _ uow.Repositories, inv *invoice.Invoice, entries []*invoice.Payment) (bool, error) {
		marked = mark(inv)
		return marked, nil
	})
	return marked, err
}

type mutation func(ctx context.Context, repos uow.Repositories, inv *invoice.Invoice, entries []*invoice.Payment) (bool, error)

func (s *LedgerService) mutate(ctx context.Context, id uuid.UUID, fn mutation) (*invoice.Invoice, error) {
	return s.mutateAt(ctx, id, s.now(), fn)
}

// mutateAt locks the invoice, refreshes its derived fields and runs fn. The
// invoice is saved when fn reports a change or the refreshed status differs
// from the stored one.
func (s *LedgerService) mutateAt(ctx context.Context, id uuid.UUID, now time.Time, fn mutation) (*invoice.Invoice, error) {
	var inv *invoice.Invoice
	err := uow.ExecuteWithRetry(ctx, s.scope, s.retries, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		inv, err = repos.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		entries, err := repos.Payments().FindByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		stored := inv.Status
		inv.Refresh(entries, now)
		changed, err := fn(ctx, repos, inv, entries)
		if err != nil {
			return err
		}
		if !changed && inv.Status == stored {
			return nil
		}
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}
		return uow.RecordEvents(ctx, repos, inv)
	})
	return inv, err
}
