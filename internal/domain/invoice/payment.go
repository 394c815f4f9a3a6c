package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
)

// Payment is one ledger entry. Positive entries are money received; negative
// entries reverse an earlier entry or record a refund. Entries are never
// edited: a reversal appends a new row and stamps ReversedAt on the original.
type Payment struct {
	shared.BaseEntity
	InvoiceID         uuid.UUID
	Amount            int64
	Method            PaymentMethod
	ExternalReference string
	ReversesPaymentID *uuid.UUID
	ReversedAt        *time.Time
	PaymentDate       time.Time
	Notes             string
}

// IsReversal reports whether the entry offsets an earlier one.
func (p *Payment) IsReversal() bool {
	return p.Amount < 0
}

// IsReversed reports whether a later entry has offset this one.
func (p *Payment) IsReversed() bool {
	return p.ReversedAt != nil
}

// NewPaymentInput carries a payment to record against an invoice.
type NewPaymentInput struct {
	Amount      int64
	Method      PaymentMethod
	Reference   string
	PaymentDate time.Time
	Notes       string
	// AllowOverpayment accepts an amount above the balance. Only money the
	// processor has already captured is recorded this way.
	AllowOverpayment bool
}
