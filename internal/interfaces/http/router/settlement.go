package router

import (
	"github.com/gin-gonic/gin"

	"github.com/transitpay/settlement/internal/interfaces/http/handler"
)

// Handlers are the settlement API's controllers.
type Handlers struct {
	Intents       *handler.IntentHandler
	Invoices      *handler.InvoiceHandler
	Methods       *handler.MethodHandler
	Notifications *handler.NotificationHandler
	Outbox        *handler.OutboxHandler
	Webhooks      *handler.WebhookHandler
	System        *handler.SystemHandler
}

// Groups returns the /api/v1 resource groups.
func (h Handlers) Groups() []*DomainGroup {
	intents := NewDomainGroup("intents", "/intents").
		POST("", h.Intents.Create).
		GET("/:id", h.Intents.Get).
		POST("/:id/capture", h.Intents.Capture).
		POST("/:id/cancel", h.Intents.Cancel).
		POST("/:id/reconcile", h.Intents.Reconcile).
		POST("/:id/refunds", h.Intents.CreateRefund).
		GET("/:id/refunds", h.Intents.ListRefunds)

	invoices := NewDomainGroup("invoices", "/invoices").
		POST("", h.Invoices.Create).
		GET("", h.Invoices.List).
		GET("/:id", h.Invoices.Get).
		POST("/:id/send", h.Invoices.Send).
		POST("/:id/view", h.Invoices.MarkViewed).
		POST("/:id/payments", h.Invoices.RecordPayment).
		GET("/:id/payments", h.Invoices.ListPayments).
		GET("/:id/document", h.Invoices.Document)

	payments := NewDomainGroup("payments", "/payments").
		DELETE("/:id", h.Invoices.RemovePayment)

	methods := NewDomainGroup("payment-methods", "/owners/:owner_id/payment-methods").
		POST("", h.Methods.Attach).
		GET("", h.Methods.List).
		GET("/default", h.Methods.Default).
		PUT("/:id/default", h.Methods.SetDefault).
		DELETE("/:id", h.Methods.Remove)

	notifications := NewDomainGroup("notifications", "/notifications").
		GET("", h.Notifications.List)

	outbox := NewDomainGroup("outbox", "/outbox").
		GET("/dead", h.Outbox.ListDead).
		POST("/dead/retry", h.Outbox.RetryAll).
		GET("/stats", h.Outbox.Stats).
		GET("/:id", h.Outbox.Get).
		POST("/:id/retry", h.Outbox.Retry)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.Info)

	return []*DomainGroup{intents, invoices, payments, methods, notifications, outbox, system}
}

// Mount binds the whole API onto engine: the versioned resource groups, the
// webhook receiver and the health check. swagger, when non-nil, is served
// under /swagger behind its own middleware chain.
func Mount(engine *gin.Engine, h Handlers, swagger []gin.HandlerFunc, opts ...RouterOption) {
	r := NewRouter(engine, opts...)
	for _, g := range h.Groups() {
		r.Register(g)
	}
	r.Setup()

	engine.POST("/webhooks/stripe", h.Webhooks.Receive)
	engine.GET("/health", h.System.Health)
	if len(swagger) > 0 {
		engine.GET("/swagger/*any", swagger...)
	}
}
