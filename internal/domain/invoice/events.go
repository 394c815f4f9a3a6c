package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

const (
	EventTypeInvoiceSent     = "invoice.sent"
	EventTypeReminderDue     = "invoice.reminder_due"
	EventTypeInvoiceOverdue  = "invoice.overdue"
	EventTypePaymentReceived = "invoice.payment_received"
)

// Details is the invoice state a notification needs, captured at commit time.
type Details struct {
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	FacilityName  string               `json:"facility_name"`
	BillingEmail  string               `json:"billing_email"`
	Currency      valueobject.Currency `json:"currency"`
	TotalAmount   int64                `json:"total_amount"`
	AmountDue     int64                `json:"amount_due"`
	DueDate       time.Time            `json:"due_date"`
}

func detailsOf(inv *Invoice) Details {
	return Details{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		FacilityName:  inv.FacilityName,
		BillingEmail:  inv.BillingEmail,
		Currency:      inv.Currency,
		TotalAmount:   inv.TotalAmount,
		AmountDue:     inv.AmountDue,
		DueDate:       inv.DueDate,
	}
}

// InvoiceSentEvent is raised the first time an invoice is sent.
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	Details
}

// InvoiceReminderDueEvent is raised once per invoice shortly before the due date.
type InvoiceReminderDueEvent struct {
	shared.BaseDomainEvent
	Details
	DaysUntilDue int `json:"days_until_due"`
}

// InvoiceOverdueEvent is raised once when an unpaid invoice passes its due date.
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	Details
	DaysOverdue int `json:"days_overdue"`
}

// PaymentReceivedEvent is raised for every recorded payment.
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	Details
	PaymentID        uuid.UUID     `json:"payment_id"`
	Amount           int64         `json:"amount"`
	Method           PaymentMethod `json:"method"`
	PaymentDate      time.Time     `json:"payment_date"`
	AmountPaid       int64         `json:"amount_paid"`
	RemainingBalance int64         `json:"remaining_balance"`
	Status           Status        `json:"status"`
}

func newInvoiceEvent(eventType string, inv *Invoice) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateType, inv.ID)
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
