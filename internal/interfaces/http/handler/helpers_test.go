package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appevent "github.com/transitpay/settlement/internal/application/event"
	appinvoice "github.com/transitpay/settlement/internal/application/invoice"
	appnotification "github.com/transitpay/settlement/internal/application/notification"
	apppayment "github.com/transitpay/settlement/internal/application/payment"
	appwebhook "github.com/transitpay/settlement/internal/application/webhook"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/infrastructure/email"
	infraevent "github.com/transitpay/settlement/internal/infrastructure/event"
	"github.com/transitpay/settlement/internal/infrastructure/persistence"
	"github.com/transitpay/settlement/internal/infrastructure/printing"
	"github.com/transitpay/settlement/internal/interfaces/http/middleware"
	"github.com/transitpay/settlement/internal/testutil"
)

const webhookSecret = "whsec_handler_test"

type pdfStub struct{}

func (pdfStub) Render(_ context.Context, inv *invoice.Invoice, _ []*invoice.Payment) (*printing.Document, error) {
	return &printing.Document{Filename: inv.InvoiceNumber + ".pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7 stub")}, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// api is a fully wired engine over an in-memory database with a mocked
// processor.
type api struct {
	st         *testutil.Settlement
	processor  *testutil.MockProcessor
	engine     *gin.Engine
	dispatcher *appnotification.Dispatcher
	outboxRepo *infraevent.GormOutboxRepository
}

func newAPI(t *testing.T) *api {
	t.Helper()
	middleware.SetupValidator()

	st := testutil.NewSettlement(t)
	proc := &testutil.MockProcessor{}
	t.Cleanup(func() { proc.AssertExpectations(t) })

	cfg := apppayment.IntentServiceConfig{Scope: st.Scope, Reads: st.Repos, Processor: proc}
	ledger := appinvoice.NewLedgerService(appinvoice.LedgerServiceConfig{Scope: st.Scope, Reads: st.Repos, Documents: pdfStub{}})
	dispatcher := appnotification.NewDispatcher(email.NewLogSender(0, zap.NewNop()),
		persistence.NewGormNotificationLogRepository(st.DB), nil, zap.NewNop())
	outboxRepo := infraevent.NewGormOutboxRepository(st.DB)
	outboxProcessor := infraevent.NewOutboxProcessor(outboxRepo, infraevent.NewInMemoryEventBus(zap.NewNop()),
		st.Serializer, infraevent.DefaultOutboxProcessorConfig(), zap.NewNop())
	ingestor, err := appwebhook.NewIngestor(appwebhook.IngestorConfig{Scope: st.Scope, Secret: webhookSecret})
	require.NoError(t, err)

	intents := NewIntentHandler(apppayment.NewIntentService(cfg), apppayment.NewRefundService(cfg))
	invoices := NewInvoiceHandler(ledger)
	methods := NewMethodHandler(apppayment.NewMethodService(cfg))
	notifications := NewNotificationHandler(dispatcher)
	outbox := NewOutboxHandler(appevent.NewOutboxService(outboxRepo, outboxProcessor, zap.NewNop()))
	webhooks := NewWebhookHandler(ingestor, 4<<10)
	system := NewSystemHandler(pingFunc(func(context.Context) error { return nil }), "settlement", "test")

	engine := gin.New()
	engine.Use(middleware.RequestID())

	v1 := engine.Group("/api/v1")
	v1.POST("/intents", intents.Create)
	v1.GET("/intents/:id", intents.Get)
	v1.POST("/intents/:id/capture", intents.Capture)
	v1.POST("/intents/:id/cancel", intents.Cancel)
	v1.POST("/intents/:id/reconcile", intents.Reconcile)
	v1.POST("/intents/:id/refunds", intents.CreateRefund)
	v1.GET("/intents/:id/refunds", intents.ListRefunds)

	v1.POST("/invoices", invoices.Create)
	v1.GET("/invoices", invoices.List)
	v1.GET("/invoices/:id", invoices.Get)
	v1.POST("/invoices/:id/send", invoices.Send)
	v1.POST("/invoices/:id/view", invoices.MarkViewed)
	v1.POST("/invoices/:id/payments", invoices.RecordPayment)
	v1.GET("/invoices/:id/payments", invoices.ListPayments)
	v1.GET("/invoices/:id/document", invoices.Document)
	v1.DELETE("/payments/:id", invoices.RemovePayment)

	v1.POST("/owners/:owner_id/payment-methods", methods.Attach)
	v1.GET("/owners/:owner_id/payment-methods", methods.List)
	v1.GET("/owners/:owner_id/payment-methods/default", methods.Default)
	v1.PUT("/owners/:owner_id/payment-methods/:id/default", methods.SetDefault)
	v1.DELETE("/owners/:owner_id/payment-methods/:id", methods.Remove)

	v1.GET("/notifications", notifications.List)
	v1.GET("/outbox/dead", outbox.ListDead)
	v1.POST("/outbox/dead/retry", outbox.RetryAll)
	v1.GET("/outbox/stats", outbox.Stats)
	v1.GET("/outbox/:id", outbox.Get)
	v1.POST("/outbox/:id/retry", outbox.Retry)
	v1.GET("/system/info", system.Info)

	engine.POST("/webhooks/stripe", webhooks.Receive)
	engine.GET("/health", system.Health)

	return &api{st: st, processor: proc, engine: engine, dispatcher: dispatcher, outboxRepo: outboxRepo}
}

func (a *api) createInvoice(t *testing.T, number string, total int64) appinvoice.InvoiceResponse {
	t.Helper()
	w := testutil.Do(t, a.engine, http.MethodPost, "/api/v1/invoices", map[string]any{
		"invoice_number": number,
		"facility_ref":   "fac_22",
		"facility_name":  "Pier 9 Lot",
		"billing_email":  "ap@pier9.example",
		"currency":       "usd",
		"total_amount":   total,
		"due_date":       "2031-01-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[appinvoice.InvoiceResponse](t, w)
}
