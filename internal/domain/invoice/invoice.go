package invoice

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

const AggregateType = "Invoice"

// Invoice is a facility invoice. AmountPaid, AmountDue and Status are derived
// from the ledger by Recompute and never set directly.
type Invoice struct {
	shared.BaseAggregateRoot

	InvoiceNumber     string
	FacilityRef       string
	FacilityName      string
	BillingEmail      string
	Currency          valueobject.Currency
	TotalAmount       int64
	AmountPaid        int64
	AmountDue         int64
	Status            Status
	DueDate           time.Time
	SentAt            *time.Time
	ViewedAt          *time.Time
	ReminderSentAt    *time.Time
	OverdueNotifiedAt *time.Time
}

// NewInvoiceInput carries the fields the billing collaborator supplies.
type NewInvoiceInput struct {
	InvoiceNumber string
	FacilityRef   string
	FacilityName  string
	BillingEmail  string
	Currency      string
	TotalAmount   int64
	DueDate       time.Time
}

// NewInvoice validates input and creates a DRAFT invoice.
func NewInvoice(in NewInvoiceInput) (*Invoice, error) {
	if strings.TrimSpace(in.InvoiceNumber) == "" {
		return nil, shared.NewValidationError("invoice number is required")
	}
	if len(in.InvoiceNumber) > 50 {
		return nil, shared.NewValidationError("invoice number cannot exceed 50 characters")
	}
	if strings.TrimSpace(in.FacilityRef) == "" {
		return nil, shared.NewValidationError("facility reference is required")
	}
	if in.TotalAmount <= 0 {
		return nil, shared.NewValidationError("total amount must be greater than zero")
	}
	if in.DueDate.IsZero() {
		return nil, shared.NewValidationError("due date is required")
	}
	if in.BillingEmail != "" {
		if _, err := mail.ParseAddress(in.BillingEmail); err != nil {
			return nil, shared.NewValidationError("billing email is not a valid address")
		}
	}
	cur, err := valueobject.ParseCurrency(in.Currency)
	if err != nil {
		return nil, shared.NewValidationError("currency must be a three-letter ISO code")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     strings.TrimSpace(in.InvoiceNumber),
		FacilityRef:       in.FacilityRef,
		FacilityName:      in.FacilityName,
		BillingEmail:      in.BillingEmail,
		Currency:          cur,
		TotalAmount:       in.TotalAmount,
		DueDate:           in.DueDate,
	}
	inv.Refresh(nil, time.Now())
	return inv, nil
}

// Refresh recomputes the derived fields from the full set of ledger entries.
func (inv *Invoice) Refresh(entries []*Payment, now time.Time) Totals {
	t := Recompute(RecomputeInput{
		Payments:    entries,
		TotalAmount: inv.TotalAmount,
		DueDate:     inv.DueDate,
		SentAt:      inv.SentAt,
		ViewedAt:    inv.ViewedAt,
		Now:         now,
	})
	inv.AmountPaid = t.AmountPaid
	inv.AmountDue = t.AmountDue
	inv.Status = t.Status
	return t
}

// Age re-derives Status as of now from the stored totals. Every ledger
// writer keeps AmountPaid in step with the entries under the invoice lock,
// so only the passage of time can move the status, and only into OVERDUE.
func (inv *Invoice) Age(now time.Time) Status {
	inv.Status = deriveStatus(inv.AmountPaid, inv.AmountDue, inv.TotalAmount, inv.DueDate, inv.SentAt, inv.ViewedAt, now)
	return inv.Status
}

// AddPayment validates a payment against the current ledger, appends it and
// recomputes. entries must be every existing entry of this invoice. The
// returned slice includes the new entry.
func (inv *Invoice) AddPayment(in NewPaymentInput, entries []*Payment, now time.Time) (*Payment, []*Payment, error) {
	if !in.Method.IsRecordable() {
		return nil, entries, shared.NewValidationError(fmt.Sprintf("unsupported payment method %q", in.Method))
	}
	if in.Amount <= 0 {
		return nil, entries, shared.NewValidationError("payment amount must be greater than zero")
	}
	inv.Refresh(entries, now)
	if in.Amount > inv.AmountDue && !in.AllowOverpayment {
		return nil, entries, shared.NewValidationError(fmt.Sprintf(
			"payment of %s exceeds amount due %s",
			valueobject.NewMoney(in.Amount, inv.Currency).Display(),
			valueobject.NewMoney(inv.AmountDue, inv.Currency).Display(),
		))
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = now
	}

	p := &Payment{
		BaseEntity:        shared.NewBaseEntity(),
		InvoiceID:         inv.ID,
		Amount:            in.Amount,
		Method:            in.Method,
		ExternalReference: in.Reference,
		PaymentDate:       in.PaymentDate,
		Notes:             in.Notes,
	}
	entries = append(entries, p)
	inv.Refresh(entries, now)

	inv.AddDomainEvent(&PaymentReceivedEvent{
		BaseDomainEvent:  newInvoiceEvent(EventTypePaymentReceived, inv),
		Details:          detailsOf(inv),
		PaymentID:        p.ID,
		Amount:           p.Amount,
		Method:           p.Method,
		PaymentDate:      p.PaymentDate,
		AmountPaid:       inv.AmountPaid,
		RemainingBalance: inv.AmountDue,
		Status:           inv.Status,
	})
	return p, entries, nil
}

// ReversePayment appends an entry that offsets target and recomputes.
func (inv *Invoice) ReversePayment(target *Payment, notes string, entries []*Payment, now time.Time) (*Payment, []*Payment, error) {
	if target.InvoiceID != inv.ID {
		return nil, entries, shared.NewValidationError("payment does not belong to this invoice")
	}
	if target.IsReversal() {
		return nil, entries, shared.NewInvalidStateError("a reversing entry cannot itself be reversed")
	}
	if target.IsReversed() {
		return nil, entries, shared.NewInvalidStateError("payment has already been reversed")
	}

	at := now
	target.ReversedAt = &at
	id := target.ID
	rev := &Payment{
		BaseEntity:        shared.NewBaseEntity(),
		InvoiceID:         inv.ID,
		Amount:            -target.Amount,
		Method:            target.Method,
		ReversesPaymentID: &id,
		PaymentDate:       now,
		Notes:             notes,
	}
	entries = append(entries, rev)
	inv.Refresh(entries, now)
	return rev, entries, nil
}

// AddRefundReversal appends a negative entry for money returned to the payer
// and recomputes. The entry never takes AmountPaid below zero.
func (inv *Invoice) AddRefundReversal(amount int64, refundRef, reason string, entries []*Payment, now time.Time) (*Payment, []*Payment, error) {
	if amount <= 0 {
		return nil, entries, shared.NewValidationError("refund amount must be greater than zero")
	}
	inv.Refresh(entries, now)
	if amount > inv.AmountPaid {
		amount = inv.AmountPaid
	}
	if amount == 0 {
		return nil, entries, nil
	}
	rev := &Payment{
		BaseEntity:        shared.NewBaseEntity(),
		InvoiceID:         inv.ID,
		Amount:            -amount,
		Method:            MethodRefund,
		ExternalReference: refundRef,
		PaymentDate:       now,
		Notes:             reason,
	}
	entries = append(entries, rev)
	inv.Refresh(entries, now)
	return rev, entries, nil
}

// MarkSent stamps the first send and raises InvoiceSentEvent. Later calls
// return false and raise nothing.
func (inv *Invoice) MarkSent(entries []*Payment, now time.Time) bool {
	if inv.SentAt != nil {
		return false
	}
	at := now
	inv.SentAt = &at
	inv.Refresh(entries, now)
	inv.AddDomainEvent(&InvoiceSentEvent{
		BaseDomainEvent: newInvoiceEvent(EventTypeInvoiceSent, inv),
		Details:         detailsOf(inv),
	})
	return true
}

// MarkViewed stamps the first view of a sent invoice.
func (inv *Invoice) MarkViewed(entries []*Payment, now time.Time) error {
	if inv.SentAt == nil {
		return shared.NewInvalidStateError("invoice has not been sent")
	}
	if inv.ViewedAt == nil {
		at := now
		inv.ViewedAt = &at
	}
	inv.Refresh(entries, now)
	return nil
}

// DueForReminder reports whether the reminder window has opened and no
// reminder has gone out yet.
func (inv *Invoice) DueForReminder(now time.Time, daysBefore int) bool {
	if inv.ReminderSentAt != nil || !inv.Status.AwaitingPayment() {
		return false
	}
	opens := inv.DueDate.AddDate(0, 0, -daysBefore)
	return !now.Before(opens) && !now.After(inv.DueDate)
}

// MarkReminderSent stamps the reminder and raises InvoiceReminderDueEvent.
func (inv *Invoice) MarkReminderSent(now time.Time) {
	at := now
	inv.ReminderSentAt = &at
	inv.AddDomainEvent(&InvoiceReminderDueEvent{
		BaseDomainEvent: newInvoiceEvent(EventTypeReminderDue, inv),
		Details:         detailsOf(inv),
		DaysUntilDue:    daysBetween(now, inv.DueDate),
	})
}

// DueForOverdueNotice reports whether the invoice is overdue and has not been
// announced as such.
func (inv *Invoice) DueForOverdueNotice() bool {
	return inv.Status == StatusOverdue && inv.OverdueNotifiedAt == nil && inv.AmountDue > 0
}

// MarkOverdueNotified stamps the notice and raises InvoiceOverdueEvent.
func (inv *Invoice) MarkOverdueNotified(now time.Time) {
	at := now
	inv.OverdueNotifiedAt = &at
	inv.AddDomainEvent(&InvoiceOverdueEvent{
		BaseDomainEvent: newInvoiceEvent(EventTypeInvoiceOverdue, inv),
		Details:         detailsOf(inv),
		DaysOverdue:     daysBetween(inv.DueDate, now),
	})
}

// FindEntry returns the entry with the given id.
func FindEntry(entries []*Payment, id uuid.UUID) *Payment {
	for _, p := range entries {
		if p.ID == id {
			return p
		}
	}
	return nil
}
