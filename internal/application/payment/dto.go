package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

// =============================================================================
// Intent DTOs
// =============================================================================

// CreateIntentRequest asks for a new payment intent.
type CreateIntentRequest struct {
	Amount           int64             `json:"amount" binding:"required,gt=0"`
	Currency         string            `json:"currency" binding:"required,currency"`
	CustomerRef      string            `json:"customer_ref" binding:"max=100"`
	PaymentMethodRef string            `json:"payment_method_ref" binding:"max=255"`
	TripRef          string            `json:"trip_ref" binding:"max=100"`
	InvoiceID        *uuid.UUID        `json:"invoice_id"`
	CaptureMethod    string            `json:"capture_method" binding:"omitempty,oneof=manual automatic"`
	Metadata         map[string]string `json:"metadata" binding:"omitempty,max=20"`
}

// CaptureIntentRequest captures an authorized intent. An omitted amount
// captures the full authorization.
type CaptureIntentRequest struct {
	AmountToCapture *int64 `json:"amount_to_capture" binding:"omitempty,gt=0"`
}

// CancelIntentRequest cancels an intent before money moves.
type CancelIntentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// IntentResponse is a payment intent in API responses.
type IntentResponse struct {
	ID                uuid.UUID         `json:"id"`
	ExternalReference string            `json:"external_reference,omitempty"`
	ClientSecret      string            `json:"client_secret,omitempty"`
	Amount            int64             `json:"amount"`
	AmountDisplay     string            `json:"amount_display"`
	Currency          string            `json:"currency"`
	Status            string            `json:"status"`
	CaptureMethod     string            `json:"capture_method"`
	TripRef           string            `json:"trip_ref,omitempty"`
	CustomerRef       string            `json:"customer_ref,omitempty"`
	PaymentMethodRef  string            `json:"payment_method_ref,omitempty"`
	InvoiceID         *uuid.UUID        `json:"invoice_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CapturedAmount    int64             `json:"captured_amount"`
	RefundedAmount    int64             `json:"refunded_amount"`
	FailureReason     string            `json:"failure_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ToIntentResponse converts an intent.
func ToIntentResponse(p *payment.PaymentIntent) IntentResponse {
	return IntentResponse{
		ID:                p.ID,
		ExternalReference: p.ExternalReference,
		ClientSecret:      p.ClientSecret,
		Amount:            p.Amount,
		AmountDisplay:     valueobject.NewMoney(p.Amount, p.Currency).Display(),
		Currency:          string(p.Currency),
		Status:            string(p.Status),
		CaptureMethod:     string(p.CaptureMethod),
		TripRef:           p.TripRef,
		CustomerRef:       p.CustomerRef,
		PaymentMethodRef:  p.PaymentMethodRef,
		InvoiceID:         p.InvoiceID,
		Metadata:          p.Metadata,
		CapturedAmount:    p.CapturedAmount,
		RefundedAmount:    p.RefundedAmount,
		FailureReason:     p.FailureReason,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// =============================================================================
// Refund DTOs
// =============================================================================

// CreateRefundRequest refunds a captured intent. An omitted amount refunds
// everything still refundable.
type CreateRefundRequest struct {
	Amount *int64 `json:"amount" binding:"omitempty,gt=0"`
	Reason string `json:"reason" binding:"max=500"`
}

// RefundResponse is a refund in API responses.
type RefundResponse struct {
	ID                uuid.UUID `json:"id"`
	IntentID          uuid.UUID `json:"intent_id"`
	ExternalReference string    `json:"external_reference,omitempty"`
	Amount            int64     `json:"amount"`
	AmountDisplay     string    `json:"amount_display"`
	Currency          string    `json:"currency"`
	Reason            string    `json:"reason,omitempty"`
	Status            string    `json:"status"`
	External          bool      `json:"external"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToRefundResponse converts a refund.
func ToRefundResponse(r *payment.Refund) RefundResponse {
	return RefundResponse{
		ID:                r.ID,
		IntentID:          r.SourceIntentID,
		ExternalReference: r.ExternalReference,
		Amount:            r.Amount,
		AmountDisplay:     valueobject.NewMoney(r.Amount, r.Currency).Display(),
		Currency:          string(r.Currency),
		Reason:            r.Reason,
		Status:            string(r.Status),
		External:          r.External,
		CreatedAt:         r.CreatedAt,
	}
}

// =============================================================================
// Payment method DTOs
// =============================================================================

// AttachMethodRequest stores a tokenized method for an owner.
type AttachMethodRequest struct {
	PaymentMethodRef string `json:"payment_method_ref" binding:"required,min=1,max=255"`
	MakeDefault      bool   `json:"make_default"`
}

// MethodResponse is a vaulted payment method. Only display data is exposed.
type MethodResponse struct {
	ID                uuid.UUID `json:"id"`
	OwnerID           string    `json:"owner_id"`
	ExternalReference string    `json:"external_reference"`
	Brand             string    `json:"brand,omitempty"`
	Last4             string    `json:"last4,omitempty"`
	ExpMonth          int       `json:"exp_month,omitempty"`
	ExpYear           int       `json:"exp_year,omitempty"`
	IsDefault         bool      `json:"is_default"`
	Expired           bool      `json:"expired"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToMethodResponse converts a vaulted method.
func ToMethodResponse(m *payment.PaymentMethod, now time.Time) MethodResponse {
	return MethodResponse{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		ExternalReference: m.ExternalReference,
		Brand:             m.Brand,
		Last4:             m.Last4,
		ExpMonth:          m.ExpMonth,
		ExpYear:           m.ExpYear,
		IsDefault:         m.IsDefault,
		Expired:           m.Expired(now),
		CreatedAt:         m.CreatedAt,
	}
}
