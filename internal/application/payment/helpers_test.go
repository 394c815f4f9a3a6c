package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/testutil"
)

type harness struct {
	st        *testutil.Settlement
	processor *testutil.MockProcessor
	intents   *IntentService
	refunds   *RefundService
	methods   *MethodService
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := testutil.NewSettlement(t)
	proc := &testutil.MockProcessor{}
	t.Cleanup(func() { proc.AssertExpectations(t) })

	cfg := IntentServiceConfig{Scope: st.Scope, Reads: st.Repos, Processor: proc}
	h := &harness{
		st:        st,
		processor: proc,
		intents:   NewIntentService(cfg),
		refunds:   NewRefundService(cfg),
		methods:   NewMethodService(cfg),
		now:       time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	h.intents.now = clock
	h.refunds.now = clock
	h.methods.now = clock
	return h
}

func (h *harness) seedInvoice(t *testing.T, total int64) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(invoice.NewInvoiceInput{
		InvoiceNumber: "INV-" + uuid.NewString()[:8],
		FacilityRef:   "fac_1",
		FacilityName:  "North Depot",
		BillingEmail:  "ap@depot.example",
		Currency:      "usd",
		TotalAmount:   total,
		DueDate:       h.now.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	require.NoError(t, h.st.Repos.Invoices().Create(context.Background(), inv))
	return inv
}

// seedCaptured stores an intent already captured for amount, optionally
// linked to an invoice with the matching ledger payment.
func (h *harness) seedCaptured(t *testing.T, amount int64, inv *invoice.Invoice) *payment.PaymentIntent {
	t.Helper()
	ctx := context.Background()
	in := payment.NewIntentInput{Amount: amount, Currency: "usd", CaptureMethod: payment.CaptureMethodAutomatic}
	if inv != nil {
		in.InvoiceID = &inv.ID
	}
	intent, err := payment.NewPaymentIntent(in)
	require.NoError(t, err)
	intent.AttachExternal("pi_"+uuid.NewString()[:12], "secret")
	require.NoError(t, h.st.Repos.Intents().Create(ctx, intent))

	remote := &payment.ProcessorIntent{Reference: intent.ExternalReference, Status: payment.ExternalSucceeded, AmountReceived: amount}
	_, err = h.intents.applyRemote(ctx, intent.ID, remote)
	require.NoError(t, err)

	stored, err := h.st.Repos.Intents().FindByID(ctx, intent.ID)
	require.NoError(t, err)
	require.Equal(t, payment.IntentStatusCaptured, stored.Status)
	return stored
}

func (h *harness) invoice(t *testing.T, id uuid.UUID) *invoice.Invoice {
	t.Helper()
	inv, err := h.st.Repos.Invoices().FindByID(context.Background(), id)
	require.NoError(t, err)
	return inv
}

func int64Ptr(v int64) *int64 { return &v }

// seedUnreferenced stores a PENDING intent whose create call never answered,
// so it has no processor reference.
func (h *harness) seedUnreferenced(t *testing.T, amount int64, inv *invoice.Invoice) *payment.PaymentIntent {
	t.Helper()
	in := payment.NewIntentInput{Amount: amount, Currency: "usd"}
	if inv != nil {
		in.InvoiceID = &inv.ID
	}
	intent, err := payment.NewPaymentIntent(in)
	require.NoError(t, err)
	require.NoError(t, h.st.Repos.Intents().Create(context.Background(), intent))
	return intent
}
