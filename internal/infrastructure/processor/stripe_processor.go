// Package processor adapts the Stripe API to the payment.Processor port.
package processor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 15 * time.Second

// StripeProcessor implements payment.Processor with a Stripe client built
// once at startup. It never touches the package-level stripe.Key.
type StripeProcessor struct {
	api     *client.API
	timeout time.Duration
	logger  *zap.Logger
}

// NewStripeProcessor builds a client from cfg. Network retries are safe
// because every mutating call below sets an idempotency key.
func NewStripeProcessor(cfg config.StripeConfig, log *zap.Logger) (*StripeProcessor, error) {
	if cfg.SecretKey == "" {
		return nil, shared.NewConfigurationError("stripe secret key is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
		LeveledLogger:     log.Named("stripe").Sugar(),
	})
	return NewStripeProcessorWithBackends(cfg.SecretKey, backends, timeout, log), nil
}

// NewStripeProcessorWithBackends wires explicit backends, which lets tests
// substitute a fake transport.
func NewStripeProcessorWithBackends(key string, backends *stripe.Backends, timeout time.Duration, log *zap.Logger) *StripeProcessor {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &StripeProcessor{
		api:     client.New(key, backends),
		timeout: timeout,
		logger:  log.Named("processor"),
	}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.ProcessorIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		CaptureMethod:      stripe.String(string(req.CaptureMethod)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	if req.CustomerRef != "" {
		params.Customer = stripe.String(req.CustomerRef)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.PaymentMethodRef != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethodRef)
		params.Confirm = stripe.Bool(true)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		maps.Copy(params.Metadata, req.Metadata)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, p.fail(ctx, "create intent", err)
	}
	logger.Enrich(ctx, p.logger).Info("Created processor intent",
		zap.String("reference", pi.ID),
		zap.String("status", string(pi.Status)))
	return toProcessorIntent(pi), nil
}

func (p *StripeProcessor) CaptureIntent(ctx context.Context, req payment.CaptureIntentRequest) (*payment.ProcessorIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	if req.AmountToCapture != nil {
		params.AmountToCapture = stripe.Int64(*req.AmountToCapture)
	}

	pi, err := p.api.PaymentIntents.Capture(req.Reference, params)
	if err != nil {
		return nil, p.fail(ctx, "capture intent", err)
	}
	return toProcessorIntent(pi), nil
}

func (p *StripeProcessor) CancelIntent(ctx context.Context, req payment.CancelIntentRequest) (*payment.ProcessorIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(cancellationReason(req.Reason)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	pi, err := p.api.PaymentIntents.Cancel(req.Reference, params)
	if err != nil {
		return nil, p.fail(ctx, "cancel intent", err)
	}
	return toProcessorIntent(pi), nil
}

func (p *StripeProcessor) RetrieveIntent(ctx context.Context, reference string) (*payment.ProcessorIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.api.PaymentIntents.Get(reference, params)
	if err != nil {
		return nil, p.fail(ctx, "retrieve intent", err)
	}
	return toProcessorIntent(pi), nil
}

func (p *StripeProcessor) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.ProcessorRefund, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.IntentRef),
		Amount:        stripe.Int64(req.Amount),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, p.fail(ctx, "create refund", err)
	}
	logger.Enrich(ctx, p.logger).Info("Created processor refund",
		zap.String("reference", r.ID),
		zap.String("status", string(r.Status)),
		zap.Int64("amount", r.Amount))
	return &payment.ProcessorRefund{
		Reference: r.ID,
		Amount:    r.Amount,
		Status:    string(r.Status),
	}, nil
}

func (p *StripeProcessor) AttachPaymentMethod(ctx context.Context, req payment.AttachMethodRequest) (*payment.ProcessorPaymentMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentMethodAttachParams{Customer: stripe.String(req.CustomerRef)}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	pm, err := p.api.PaymentMethods.Attach(req.PaymentMethodRef, params)
	if err != nil {
		return nil, p.fail(ctx, "attach payment method", err)
	}
	out := &payment.ProcessorPaymentMethod{Reference: pm.ID}
	if pm.Card != nil {
		out.Brand = string(pm.Card.Brand)
		out.Last4 = pm.Card.Last4
		out.ExpMonth = int(pm.Card.ExpMonth)
		out.ExpYear = int(pm.Card.ExpYear)
	}
	return out, nil
}

func (p *StripeProcessor) DetachPaymentMethod(ctx context.Context, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx
	params.SetIdempotencyKey("pm-detach:" + reference)
	if _, err := p.api.PaymentMethods.Detach(reference, params); err != nil {
		return p.fail(ctx, "detach payment method", err)
	}
	return nil
}

func (p *StripeProcessor) fail(ctx context.Context, op string, err error) error {
	pe := classify(err)
	logger.Enrich(ctx, p.logger).Warn("Processor call failed",
		zap.String("operation", op),
		zap.String("kind", string(pe.Kind)),
		zap.String("code", pe.Code),
		zap.String("request_id", pe.RequestID),
		zap.Error(err))
	return fmt.Errorf("stripe: %s: %w", op, pe)
}

// classify turns any error from the Stripe client into a typed
// ProcessorError. Transport failures and 5xx answers leave the outcome
// unknown and are reported as network errors.
func classify(err error) *payment.ProcessorError {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return &payment.ProcessorError{Kind: payment.ErrorKindNetwork, Message: "processor unreachable", Cause: err}
	}

	pe := &payment.ProcessorError{
		Code:        string(se.Code),
		DeclineCode: string(se.DeclineCode),
		Message:     se.Msg,
		RequestID:   se.RequestID,
		Cause:       err,
	}
	switch {
	case se.HTTPStatusCode == http.StatusTooManyRequests || se.Code == stripe.ErrorCodeRateLimit:
		pe.Kind = payment.ErrorKindRateLimited
	case se.HTTPStatusCode >= 500 || se.HTTPStatusCode == 0:
		pe.Kind = payment.ErrorKindNetwork
	case se.DeclineCode == stripe.DeclineCodeInsufficientFunds:
		pe.Kind = payment.ErrorKindInsufficientFunds
	case se.Code == "authentication_required" || se.DeclineCode == stripe.DeclineCodeAuthenticationRequired:
		pe.Kind = payment.ErrorKindAuthenticationRequired
	case se.Type == stripe.ErrorTypeCard:
		pe.Kind = payment.ErrorKindDeclined
	case se.Type == stripe.ErrorTypeInvalidRequest || se.Type == stripe.ErrorTypeIdempotency:
		pe.Kind = payment.ErrorKindInvalidRequest
	default:
		pe.Kind = payment.ErrorKindUnknown
	}
	return pe
}

func toProcessorIntent(pi *stripe.PaymentIntent) *payment.ProcessorIntent {
	out := &payment.ProcessorIntent{
		Reference:        pi.ID,
		ClientSecret:     pi.ClientSecret,
		Status:           string(pi.Status),
		Amount:           pi.Amount,
		AmountCapturable: pi.AmountCapturable,
		AmountReceived:   pi.AmountReceived,
	}
	if pi.LastPaymentError != nil {
		out.LastError = pi.LastPaymentError.Msg
	}
	return out
}

// cancellationReason narrows free text to the reasons Stripe accepts.
func cancellationReason(reason string) string {
	switch reason {
	case "duplicate", "fraudulent", "abandoned", "requested_by_customer":
		return reason
	}
	return "requested_by_customer"
}

var _ payment.Processor = (*StripeProcessor)(nil)
