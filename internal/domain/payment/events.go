package payment

import (
	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

const EventTypePaymentRefunded = "payment.refunded"

// PaymentRefundedEvent is raised once a refund is committed locally.
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	RefundID       uuid.UUID            `json:"refund_id"`
	IntentID       uuid.UUID            `json:"intent_id"`
	InvoiceID      *uuid.UUID           `json:"invoice_id,omitempty"`
	Amount         int64                `json:"amount"`
	Currency       valueobject.Currency `json:"currency"`
	Reason         string               `json:"reason"`
	RefundedTotal  int64                `json:"refunded_total"`
	FullyRefunded  bool                 `json:"fully_refunded"`
	ExternalRefund bool                 `json:"external_refund"`
}

// NewPaymentRefundedEvent builds the event from the intent after the refund
// has been applied to it.
func NewPaymentRefundedEvent(p *PaymentIntent, r *Refund) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRefunded, AggregateTypeIntent, p.ID),
		RefundID:        r.ID,
		IntentID:        p.ID,
		InvoiceID:       p.InvoiceID,
		Amount:          r.Amount,
		Currency:        p.Currency,
		Reason:          r.Reason,
		RefundedTotal:   p.RefundedAmount,
		FullyRefunded:   p.Status == IntentStatusRefunded,
		ExternalRefund:  r.External,
	}
}
