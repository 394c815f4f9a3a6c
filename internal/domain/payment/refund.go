package payment

import (
	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

// RefundStatus mirrors the processor's refund outcome.
type RefundStatus string

const (
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusFailed    RefundStatus = "failed"
)

// RefundStatusFromExternal maps the processor's refund status. Anything the
// processor did not accept counts as failed.
func RefundStatusFromExternal(s string) RefundStatus {
	switch s {
	case "succeeded":
		return RefundStatusSucceeded
	case "pending", "requires_action":
		return RefundStatusPending
	default:
		return RefundStatusFailed
	}
}

// Accepted reports whether the processor committed to moving the money back.
func (s RefundStatus) Accepted() bool {
	return s == RefundStatusSucceeded || s == RefundStatusPending
}

// Refund records money returned against a captured intent.
type Refund struct {
	shared.BaseEntity
	SourceIntentID    uuid.UUID
	ExternalReference string
	Amount            int64
	Currency          valueobject.Currency
	Reason            string
	Status            RefundStatus
	// External is true when the refund was issued outside this service and
	// picked up from a webhook.
	External bool
}

// NewRefund creates a refund for an intent once the processor has answered.
func NewRefund(intent *PaymentIntent, amount int64, reason, externalRef string, status RefundStatus) *Refund {
	return &Refund{
		BaseEntity:        shared.NewBaseEntity(),
		SourceIntentID:    intent.ID,
		ExternalReference: externalRef,
		Amount:            amount,
		Currency:          intent.Currency,
		Reason:            reason,
		Status:            status,
	}
}
