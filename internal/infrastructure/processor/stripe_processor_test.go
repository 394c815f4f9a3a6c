package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"go.uber.org/zap"
)

type call struct {
	method string
	path   string
	params stripe.ParamsContainer
}

// fakeBackend implements stripe.Backend and records every call.
type fakeBackend struct {
	calls   []call
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
}

func (f *fakeBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	f.calls = append(f.calls, call{method: method, path: path, params: params})
	data, err := f.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (f *fakeBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (f *fakeBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (f *fakeBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (f *fakeBackend) SetMaxNetworkRetries(int64) {}

func newTestProcessor(handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) (*StripeProcessor, *fakeBackend) {
	fb := &fakeBackend{handler: handler}
	backends := &stripe.Backends{API: fb, Connect: fb, Uploads: fb}
	return NewStripeProcessorWithBackends("sk_test_123", backends, time.Second, zap.NewNop()), fb
}

func respond(v any) func(string, string, stripe.ParamsContainer) ([]byte, error) {
	return func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return json.Marshal(v)
	}
}

func TestNewStripeProcessor_RequiresKey(t *testing.T) {
	_, err := NewStripeProcessor(config.StripeConfig{}, zap.NewNop())
	assert.Error(t, err)

	p, err := NewStripeProcessor(config.StripeConfig{SecretKey: "sk_test_1", MaxNetworkRetries: 2}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, defaultRequestTimeout, p.timeout)
}

func TestStripeProcessor_CreateIntent(t *testing.T) {
	p, fb := newTestProcessor(respond(map[string]any{
		"id":              "pi_123",
		"object":          "payment_intent",
		"client_secret":   "pi_123_secret_abc",
		"status":          "requires_capture",
		"amount":          8550,
		"amount_received": 0,
	}))

	out, err := p.CreateIntent(context.Background(), payment.CreateIntentRequest{
		IdempotencyKey:   "intent-create:abc",
		Amount:           8550,
		Currency:         "usd",
		CustomerRef:      "cus_1",
		PaymentMethodRef: "pm_1",
		CaptureMethod:    payment.CaptureMethodManual,
		Metadata:         map[string]string{"trip_ref": "trip_9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", out.Reference)
	assert.Equal(t, "pi_123_secret_abc", out.ClientSecret)
	assert.Equal(t, payment.ExternalRequiresCapture, out.Status)
	assert.Equal(t, int64(8550), out.Amount)

	require.Len(t, fb.calls, 1)
	c := fb.calls[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/v1/payment_intents", c.path)
	params, ok := c.params.(*stripe.PaymentIntentParams)
	require.True(t, ok)
	assert.Equal(t, "intent-create:abc", *params.IdempotencyKey)
	assert.Equal(t, int64(8550), *params.Amount)
	assert.Equal(t, "manual", *params.CaptureMethod)
	assert.True(t, *params.Confirm, "a supplied payment method is confirmed immediately")
	assert.Equal(t, "trip_9", params.Metadata["trip_ref"])
}

func TestStripeProcessor_CreateIntentWithoutMethod(t *testing.T) {
	p, fb := newTestProcessor(respond(map[string]any{"id": "pi_1", "status": "requires_payment_method", "amount": 100}))

	out, err := p.CreateIntent(context.Background(), payment.CreateIntentRequest{IdempotencyKey: "k", Amount: 100, Currency: "usd", CaptureMethod: payment.CaptureMethodAutomatic})
	require.NoError(t, err)
	assert.Equal(t, payment.ExternalRequiresPaymentMethod, out.Status)

	params := fb.calls[0].params.(*stripe.PaymentIntentParams)
	assert.Nil(t, params.Confirm)
	assert.Nil(t, params.PaymentMethod)
}

func TestStripeProcessor_CaptureIntent(t *testing.T) {
	p, fb := newTestProcessor(respond(map[string]any{"id": "pi_1", "status": "succeeded", "amount": 1000, "amount_received": 800}))

	amount := int64(800)
	out, err := p.CaptureIntent(context.Background(), payment.CaptureIntentRequest{IdempotencyKey: "intent-capture:1", Reference: "pi_1", AmountToCapture: &amount})
	require.NoError(t, err)
	assert.Equal(t, int64(800), out.AmountReceived)

	c := fb.calls[0]
	assert.Equal(t, "/v1/payment_intents/pi_1/capture", c.path)
	params := c.params.(*stripe.PaymentIntentCaptureParams)
	assert.Equal(t, int64(800), *params.AmountToCapture)
	assert.Equal(t, "intent-capture:1", *params.IdempotencyKey)
}

func TestStripeProcessor_CancelIntent(t *testing.T) {
	p, fb := newTestProcessor(respond(map[string]any{"id": "pi_1", "status": "canceled"}))

	out, err := p.CancelIntent(context.Background(), payment.CancelIntentRequest{IdempotencyKey: "k", Reference: "pi_1", Reason: "trip cancelled by dispatcher"})
	require.NoError(t, err)
	assert.Equal(t, payment.ExternalCanceled, out.Status)

	params := fb.calls[0].params.(*stripe.PaymentIntentCancelParams)
	assert.Equal(t, "requested_by_customer", *params.CancellationReason)
}

func TestStripeProcessor_CreateRefund(t *testing.T) {
	p, fb := newTestProcessor(respond(map[string]any{"id": "re_1", "object": "refund", "amount": 8550, "status": "succeeded"}))

	out, err := p.CreateRefund(context.Background(), payment.RefundRequest{IdempotencyKey: "refund:x:0:8550", IntentRef: "pi_1", Amount: 8550, Metadata: map[string]string{"intent_id": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "re_1", out.Reference)
	assert.Equal(t, "succeeded", out.Status)

	c := fb.calls[0]
	assert.Equal(t, "/v1/refunds", c.path)
	params := c.params.(*stripe.RefundParams)
	assert.Equal(t, "pi_1", *params.PaymentIntent)
	assert.Equal(t, map[string]string{"intent_id": "x"}, params.Metadata)
}

func TestStripeProcessor_AttachAndDetach(t *testing.T) {
	p, fb := newTestProcessor(respond(map[string]any{
		"id":   "pm_1",
		"card": map[string]any{"brand": "visa", "last4": "4242", "exp_month": 12, "exp_year": 2030},
	}))

	out, err := p.AttachPaymentMethod(context.Background(), payment.AttachMethodRequest{IdempotencyKey: "pm-attach:pm_1", PaymentMethodRef: "pm_1", CustomerRef: "cus_1"})
	require.NoError(t, err)
	assert.Equal(t, "visa", out.Brand)
	assert.Equal(t, "4242", out.Last4)
	assert.Equal(t, 12, out.ExpMonth)
	assert.Equal(t, 2030, out.ExpYear)

	require.NoError(t, p.DetachPaymentMethod(context.Background(), "pm_1"))
	require.Len(t, fb.calls, 2)
	assert.Equal(t, "/v1/payment_methods/pm_1/attach", fb.calls[0].path)
	assert.Equal(t, "/v1/payment_methods/pm_1/detach", fb.calls[1].path)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want payment.ProcessorErrorKind
	}{
		{"card declined", &stripe.Error{Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined, DeclineCode: stripe.DeclineCodeGenericDecline, HTTPStatusCode: 402}, payment.ErrorKindDeclined},
		{"insufficient funds", &stripe.Error{Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined, DeclineCode: stripe.DeclineCodeInsufficientFunds, HTTPStatusCode: 402}, payment.ErrorKindInsufficientFunds},
		{"authentication required", &stripe.Error{Type: stripe.ErrorTypeCard, Code: "authentication_required", HTTPStatusCode: 402}, payment.ErrorKindAuthenticationRequired},
		{"rate limited", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Code: stripe.ErrorCodeRateLimit, HTTPStatusCode: 429}, payment.ErrorKindRateLimited},
		{"server error", &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: 502}, payment.ErrorKindNetwork},
		{"invalid request", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: 400}, payment.ErrorKindInvalidRequest},
		{"transport", errors.New("dial tcp: i/o timeout"), payment.ErrorKindNetwork},
		{"deadline", context.DeadlineExceeded, payment.ErrorKindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err).Kind)
		})
	}
}

func TestStripeProcessor_ErrorsAreTyped(t *testing.T) {
	p, _ := newTestProcessor(func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return nil, &stripe.Error{Type: stripe.ErrorTypeCard, Code: stripe.ErrorCodeCardDeclined, DeclineCode: stripe.DeclineCodeInsufficientFunds, Msg: "Your card has insufficient funds.", HTTPStatusCode: 402, RequestID: "req_1"}
	})

	_, err := p.CreateIntent(context.Background(), payment.CreateIntentRequest{IdempotencyKey: "k", Amount: 100, Currency: "usd", PaymentMethodRef: "pm_1", CaptureMethod: payment.CaptureMethodManual})
	require.Error(t, err)
	pe, ok := payment.AsProcessorError(err)
	require.True(t, ok)
	assert.Equal(t, payment.ErrorKindInsufficientFunds, pe.Kind)
	assert.Equal(t, "req_1", pe.RequestID)
	assert.True(t, pe.IsCardFailure())
	assert.False(t, pe.OutcomeUnknown())
}
