package payment

import (
	"context"
	"errors"
	"fmt"
)

// Processor is the outbound port to the external payment processor. Every
// mutating call carries an idempotency key so that transport-level retries
// cannot charge or refund twice.
type Processor interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*ProcessorIntent, error)
	CaptureIntent(ctx context.Context, req CaptureIntentRequest) (*ProcessorIntent, error)
	CancelIntent(ctx context.Context, req CancelIntentRequest) (*ProcessorIntent, error)
	RetrieveIntent(ctx context.Context, reference string) (*ProcessorIntent, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*ProcessorRefund, error)
	AttachPaymentMethod(ctx context.Context, req AttachMethodRequest) (*ProcessorPaymentMethod, error)
	DetachPaymentMethod(ctx context.Context, reference string) error
}

type CreateIntentRequest struct {
	IdempotencyKey   string
	Amount           int64
	Currency         string
	CustomerRef      string
	PaymentMethodRef string
	CaptureMethod    CaptureMethod
	Description      string
	Metadata         map[string]string
}

type CaptureIntentRequest struct {
	IdempotencyKey  string
	Reference       string
	AmountToCapture *int64
}

type CancelIntentRequest struct {
	IdempotencyKey string
	Reference      string
	Reason         string
}

// RefundRequest carries only what the idempotency key pins, so a retry under
// the same key always sends identical parameters. The refund reason stays on
// the local Refund row.
type RefundRequest struct {
	IdempotencyKey string
	IntentRef      string
	Amount         int64
	Metadata       map[string]string
}

type AttachMethodRequest struct {
	IdempotencyKey   string
	PaymentMethodRef string
	CustomerRef      string
}

// ProcessorIntent is the processor's view of an intent.
type ProcessorIntent struct {
	Reference        string
	ClientSecret     string
	Status           string
	Amount           int64
	AmountCapturable int64
	AmountReceived   int64
	LastError        string
}

type ProcessorRefund struct {
	Reference string
	Amount    int64
	Status    string
}

type ProcessorPaymentMethod struct {
	Reference string
	Brand     string
	Last4     string
	ExpMonth  int
	ExpYear   int
}

// ProcessorErrorKind classifies processor failures.
type ProcessorErrorKind string

const (
	ErrorKindDeclined               ProcessorErrorKind = "declined"
	ErrorKindInsufficientFunds      ProcessorErrorKind = "insufficient_funds"
	ErrorKindAuthenticationRequired ProcessorErrorKind = "authentication_required"
	ErrorKindRateLimited            ProcessorErrorKind = "rate_limited"
	ErrorKindNetwork                ProcessorErrorKind = "network"
	ErrorKindInvalidRequest         ProcessorErrorKind = "invalid_request"
	ErrorKindUnknown                ProcessorErrorKind = "unknown"
)

// ProcessorError is a typed processor failure. A network kind means the
// outcome is unknown and must be reconciled from the processor's side.
type ProcessorError struct {
	Kind        ProcessorErrorKind
	Code        string
	DeclineCode string
	Message     string
	RequestID   string
	Cause       error
}

func (e *ProcessorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("processor %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("processor %s", e.Kind)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// OutcomeUnknown reports whether the remote side may or may not have applied
// the call.
func (e *ProcessorError) OutcomeUnknown() bool {
	return e.Kind == ErrorKindNetwork
}

// IsCardFailure reports whether the payer's instrument rejected the charge.
func (e *ProcessorError) IsCardFailure() bool {
	switch e.Kind {
	case ErrorKindDeclined, ErrorKindInsufficientFunds, ErrorKindAuthenticationRequired:
		return true
	}
	return false
}

// AsProcessorError extracts a ProcessorError from err's chain.
func AsProcessorError(err error) (*ProcessorError, bool) {
	var pe *ProcessorError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
