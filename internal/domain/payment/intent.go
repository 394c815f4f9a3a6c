package payment

import (
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
)

const AggregateTypeIntent = "PaymentIntent"

// PaymentIntent is the tracked request-to-charge. Identity fields never change
// after creation; only the status, the captured and refunded counters and the
// failure reason move.
type PaymentIntent struct {
	shared.BaseAggregateRoot

	ExternalReference string
	ClientSecret      string
	Amount            int64
	Currency          valueobject.Currency
	Status            IntentStatus
	CaptureMethod     CaptureMethod
	TripRef           string
	CustomerRef       string
	PaymentMethodRef  string
	InvoiceID         *uuid.UUID
	Metadata          map[string]string
	CapturedAmount    int64
	RefundedAmount    int64
	FailureReason     string
}

// NewIntentInput carries the caller-supplied fields of a new intent.
type NewIntentInput struct {
	Amount           int64
	Currency         string
	CaptureMethod    CaptureMethod
	TripRef          string
	CustomerRef      string
	PaymentMethodRef string
	InvoiceID        *uuid.UUID
	Metadata         map[string]string
}

// NewPaymentIntent validates input and creates a PENDING intent.
func NewPaymentIntent(in NewIntentInput) (*PaymentIntent, error) {
	if in.Amount <= 0 {
		return nil, shared.NewValidationError("amount must be greater than zero")
	}
	cur, err := valueobject.ParseCurrency(in.Currency)
	if err != nil {
		return nil, shared.NewValidationError("currency must be a three-letter ISO code")
	}
	if in.CaptureMethod == "" {
		in.CaptureMethod = CaptureMethodManual
	}
	if !in.CaptureMethod.IsValid() {
		return nil, shared.NewValidationError("capture method must be manual or automatic")
	}
	for k := range in.Metadata {
		if strings.TrimSpace(k) == "" || len(k) > 40 {
			return nil, shared.NewValidationError("metadata keys must be 1-40 characters")
		}
	}

	md := make(map[string]string, len(in.Metadata))
	maps.Copy(md, in.Metadata)

	return &PaymentIntent{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            in.Amount,
		Currency:          cur,
		Status:            IntentStatusPending,
		CaptureMethod:     in.CaptureMethod,
		TripRef:           in.TripRef,
		CustomerRef:       in.CustomerRef,
		PaymentMethodRef:  in.PaymentMethodRef,
		InvoiceID:         in.InvoiceID,
		Metadata:          md,
	}, nil
}

// Snapshot returns the fields the webhook reducer decides on.
func (p *PaymentIntent) Snapshot() IntentSnapshot {
	return IntentSnapshot{
		Status:         p.Status,
		Amount:         p.Amount,
		CapturedAmount: p.CapturedAmount,
		RefundedAmount: p.RefundedAmount,
	}
}

// AttachExternal records the processor's identifiers after creation.
func (p *PaymentIntent) AttachExternal(reference, clientSecret string) {
	p.ExternalReference = reference
	p.ClientSecret = clientSecret
}

// RemainingRefundable is the captured amount not yet refunded.
func (p *PaymentIntent) RemainingRefundable() int64 {
	return p.CapturedAmount - p.RefundedAmount
}

// EnsureCapturable fails unless the intent is AUTHORIZED and the amount fits.
func (p *PaymentIntent) EnsureCapturable(amountToCapture *int64) error {
	if p.Status != IntentStatusAuthorized {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot capture intent in status %s", p.Status))
	}
	if amountToCapture != nil && (*amountToCapture <= 0 || *amountToCapture > p.Amount) {
		return shared.NewValidationError("amount to capture must be greater than zero and at most the authorized amount")
	}
	return nil
}

// EnsureCancellable fails once money has moved.
func (p *PaymentIntent) EnsureCancellable() error {
	if !p.Status.IsCancellable() {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot cancel intent in status %s", p.Status))
	}
	return nil
}

// ResolveRefundAmount applies the refund guards and turns an omitted amount
// into the full remaining captured amount.
func (p *PaymentIntent) ResolveRefundAmount(amount *int64) (int64, error) {
	if !p.Status.IsRefundable() {
		return 0, shared.NewInvalidStateError(fmt.Sprintf("cannot refund intent in status %s", p.Status))
	}
	remaining := p.RemainingRefundable()
	if amount == nil {
		if remaining <= 0 {
			return 0, shared.NewValidationError("nothing left to refund")
		}
		return remaining, nil
	}
	if *amount <= 0 {
		return 0, shared.NewValidationError("refund amount must be greater than zero")
	}
	if *amount > remaining {
		return 0, shared.NewValidationError(fmt.Sprintf("refund amount %d exceeds refundable balance %d", *amount, remaining))
	}
	return *amount, nil
}

// ApplyExternalStatus moves the intent according to a processor-reported
// status. capturedAmount is the processor's amount_received and is only read
// when the move lands on CAPTURED. It reports whether anything changed.
func (p *PaymentIntent) ApplyExternalStatus(external string, capturedAmount int64) (Transition, bool) {
	d := decideStatus(p.Snapshot(), MapExternalStatus(external), capturedAmount)
	if !d.Changes() {
		return Transition{From: p.Status, To: p.Status}, false
	}
	if err := p.ApplyDecision(d); err != nil {
		return Transition{From: p.Status, To: p.Status}, false
	}
	return Transition{From: d.From, To: d.To}, true
}

// MarkFailed records a cancellation or terminal failure.
func (p *PaymentIntent) MarkFailed(reason string) error {
	if err := p.EnsureCancellable(); err != nil {
		return err
	}
	p.Status = IntentStatusFailed
	p.FailureReason = reason
	return nil
}

// ApplyRefund bumps the refunded counter after the processor accepted the
// refund, and raises PaymentRefundedEvent.
func (p *PaymentIntent) ApplyRefund(refund *Refund) error {
	amount := refund.Amount
	if _, err := p.ResolveRefundAmount(&amount); err != nil {
		return err
	}
	next := IntentStatusPartiallyRefunded
	if p.RefundedAmount+amount == p.CapturedAmount {
		next = IntentStatusRefunded
	}
	if !CanTransition(p.Status, next) {
		return shared.NewInvalidStateError(fmt.Sprintf("illegal transition %s -> %s", p.Status, next))
	}
	p.RefundedAmount += amount
	p.Status = next
	p.AddDomainEvent(NewPaymentRefundedEvent(p, refund))
	return nil
}

// ApplyDecision commits a reducer decision. Illegal moves are refused so a
// stale or replayed event can never be persisted as a regression.
func (p *PaymentIntent) ApplyDecision(d Decision) error {
	if d.FailureReason != "" && p.Status.IsCancellable() {
		p.FailureReason = d.FailureReason
	}
	switch d.Action {
	case ActionNone:
		return nil
	case ActionTransition:
		if d.From != p.Status || !CanTransition(d.From, d.To) {
			return shared.NewInvalidStateError(fmt.Sprintf("illegal transition %s -> %s", p.Status, d.To))
		}
		p.Status = d.To
		if d.To == IntentStatusCaptured {
			p.CapturedAmount = d.CapturedAmount
		}
	case ActionExternalRefund:
		if d.From != p.Status || !CanTransition(d.From, d.To) {
			return shared.NewInvalidStateError(fmt.Sprintf("illegal transition %s -> %s", p.Status, d.To))
		}
		if d.RefundAmount <= 0 || d.RefundAmount > p.RemainingRefundable() {
			return shared.NewValidationError("external refund exceeds refundable balance")
		}
		p.RefundedAmount += d.RefundAmount
		p.Status = d.To
	}
	return nil
}

// Transition is a committed status move.
type Transition struct {
	From IntentStatus
	To   IntentStatus
}
