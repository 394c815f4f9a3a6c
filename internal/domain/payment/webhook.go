package payment

import (
	"fmt"
	"time"
)

// Processor webhook event types the reducer understands.
const (
	EventIntentProcessing       = "payment_intent.processing"
	EventIntentRequiresAction   = "payment_intent.requires_action"
	EventIntentAmountCapturable = "payment_intent.amount_capturable_updated"
	EventIntentSucceeded        = "payment_intent.succeeded"
	EventIntentPaymentFailed    = "payment_intent.payment_failed"
	EventIntentCanceled         = "payment_intent.canceled"
	EventChargeRefunded         = "charge.refunded"
)

// WebhookEvent is a verified processor event reduced to the fields the
// settlement engine reads.
type WebhookEvent struct {
	ID             string
	Type           string
	IntentRef      string
	// IntentID is the local intent id the processor echoes back in metadata.
	// It finds an intent whose create response never arrived.
	IntentID       string
	ExternalStatus string
	AmountReceived int64
	AmountRefunded int64
	RefundRef      string
	FailureMessage string
	Created        time.Time
}

// IsIntentScoped reports whether the event references a payment intent the
// engine tracks.
func (e WebhookEvent) IsIntentScoped() bool {
	switch e.Type {
	case EventIntentProcessing, EventIntentRequiresAction, EventIntentAmountCapturable,
		EventIntentSucceeded, EventIntentPaymentFailed, EventIntentCanceled, EventChargeRefunded:
		return e.IntentRef != ""
	}
	return false
}

// IntentSnapshot is the state the reducer decides against.
type IntentSnapshot struct {
	Status         IntentStatus
	Amount         int64
	CapturedAmount int64
	RefundedAmount int64
}

// DecisionAction names the kind of mutation a Decision asks for.
type DecisionAction string

const (
	ActionNone           DecisionAction = "none"
	ActionTransition     DecisionAction = "transition"
	ActionExternalRefund DecisionAction = "external_refund"
)

// Decision is the set of mutations an event implies for one intent. It is
// computed without side effects; the apply step commits it.
type Decision struct {
	Action DecisionAction
	From   IntentStatus
	To     IntentStatus

	// CapturedAmount is set when To is CAPTURED.
	CapturedAmount int64
	// RecordLedgerPayment asks the apply step to post CapturedAmount to the
	// linked invoice.
	RecordLedgerPayment bool

	// RefundAmount and RefundRef describe a refund issued outside the engine.
	RefundAmount int64
	RefundRef    string

	FailureReason string
	// Reason explains a no-op, for logs.
	Reason string
}

// Changes reports whether the decision mutates the intent's status or counters.
func (d Decision) Changes() bool {
	return d.Action != ActionNone
}

// Reduce computes the mutations a webhook event implies for the current
// intent state. Legality comes from the snapshot, never from arrival order,
// so duplicates and late deliveries reduce to ActionNone.
func Reduce(s IntentSnapshot, ev WebhookEvent) Decision {
	switch ev.Type {
	case EventIntentProcessing, EventIntentRequiresAction, EventIntentAmountCapturable,
		EventIntentSucceeded, EventIntentCanceled:
		return decideStatus(s, MapExternalStatus(ev.ExternalStatus), ev.AmountReceived)
	case EventIntentPaymentFailed:
		d := decideStatus(s, MapExternalStatus(ev.ExternalStatus), ev.AmountReceived)
		d.FailureReason = ev.FailureMessage
		return d
	case EventChargeRefunded:
		return decideExternalRefund(s, ev)
	}
	return Decision{Action: ActionNone, From: s.Status, To: s.Status, Reason: "unhandled event type " + ev.Type}
}

func decideStatus(s IntentSnapshot, target IntentStatus, amountReceived int64) Decision {
	next, moved := NextStatus(s.Status, target)
	if !moved {
		return Decision{
			Action: ActionNone,
			From:   s.Status,
			To:     s.Status,
			Reason: fmt.Sprintf("status %s already at or past %s", s.Status, target),
		}
	}
	d := Decision{Action: ActionTransition, From: s.Status, To: next}
	if next == IntentStatusCaptured {
		captured := amountReceived
		if captured <= 0 || captured > s.Amount {
			captured = s.Amount
		}
		d.CapturedAmount = captured
		d.RecordLedgerPayment = true
	}
	return d
}

func decideExternalRefund(s IntentSnapshot, ev WebhookEvent) Decision {
	none := Decision{Action: ActionNone, From: s.Status, To: s.Status}
	if !s.Status.IsRefundable() {
		none.Reason = fmt.Sprintf("refund reported for intent in status %s", s.Status)
		return none
	}
	if ev.AmountRefunded <= s.RefundedAmount {
		none.Reason = "refund already reflected"
		return none
	}
	delta := ev.AmountRefunded - s.RefundedAmount
	if remaining := s.CapturedAmount - s.RefundedAmount; delta > remaining {
		delta = remaining
	}
	next := IntentStatusPartiallyRefunded
	if s.RefundedAmount+delta == s.CapturedAmount {
		next = IntentStatusRefunded
	}
	return Decision{
		Action:       ActionExternalRefund,
		From:         s.Status,
		To:           next,
		RefundAmount: delta,
		RefundRef:    ev.RefundRef,
	}
}
