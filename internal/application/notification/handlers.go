package notification

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/notification"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"github.com/transitpay/settlement/internal/infrastructure/printing"
)

const dateLayout = "January 2, 2006"

// Sender is the part of Dispatcher the handlers need.
type Sender interface {
	Send(ctx context.Context, key notification.TemplateKey, vars notification.Vars, recipient string, attachments ...notification.Attachment) *notification.Log
}

// DocumentRenderer turns an invoice and its ledger into a PDF.
type DocumentRenderer interface {
	Render(ctx context.Context, inv *invoice.Invoice, entries []*invoice.Payment) (*printing.Document, error)
}

// InvoiceHandler mails the billing contact when an invoice is sent, comes
// due, goes overdue or receives a payment.
type InvoiceHandler struct {
	sender    Sender
	reads     uow.Repositories
	documents DocumentRenderer
	attachPDF bool
	logger    *zap.Logger
}

// NewInvoiceHandler creates the handler. documents may be nil, in which case
// sent invoices go out without a PDF.
func NewInvoiceHandler(sender Sender, reads uow.Repositories, documents DocumentRenderer, attachPDF bool, log *zap.Logger) *InvoiceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceHandler{
		sender:    sender,
		reads:     reads,
		documents: documents,
		attachPDF: attachPDF,
		logger:    log.Named("invoice_notifications"),
	}
}

func (h *InvoiceHandler) EventTypes() []string {
	return []string{
		invoice.EventTypeInvoiceSent,
		invoice.EventTypeReminderDue,
		invoice.EventTypeInvoiceOverdue,
		invoice.EventTypePaymentReceived,
	}
}

// Handle maps the event onto its template. Events without a billing email
// are skipped.
func (h *InvoiceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoice.InvoiceSentEvent:
		if !h.hasRecipient(ctx, event, e.Details) {
			return nil
		}
		vars := notification.Vars{
			"InvoiceNumber": e.InvoiceNumber,
			"FacilityName":  facilityName(e.Details),
			"AmountDue":     display(e.AmountDue, e.Currency),
			"DueDate":       e.DueDate.Format(dateLayout),
		}
		h.sender.Send(ctx, notification.TemplateInvoiceSent, vars, e.BillingEmail, h.attachments(ctx, e.InvoiceID)...)

	case *invoice.InvoiceReminderDueEvent:
		if !h.hasRecipient(ctx, event, e.Details) {
			return nil
		}
		vars := notification.Vars{
			"InvoiceNumber": e.InvoiceNumber,
			"AmountDue":     display(e.AmountDue, e.Currency),
			"DueDate":       e.DueDate.Format(dateLayout),
			"DaysUntilDue":  strconv.Itoa(e.DaysUntilDue),
		}
		h.sender.Send(ctx, notification.TemplateInvoiceReminder, vars, e.BillingEmail)

	case *invoice.InvoiceOverdueEvent:
		if !h.hasRecipient(ctx, event, e.Details) {
			return nil
		}
		vars := notification.Vars{
			"InvoiceNumber": e.InvoiceNumber,
			"AmountDue":     display(e.AmountDue, e.Currency),
			"DueDate":       e.DueDate.Format(dateLayout),
			"DaysOverdue":   strconv.Itoa(e.DaysOverdue),
		}
		h.sender.Send(ctx, notification.TemplateInvoiceOverdue, vars, e.BillingEmail)

	case *invoice.PaymentReceivedEvent:
		if !h.hasRecipient(ctx, event, e.Details) {
			return nil
		}
		remaining := e.RemainingBalance
		if remaining < 0 {
			remaining = 0
		}
		vars := notification.Vars{
			"InvoiceNumber":    e.InvoiceNumber,
			"AmountPaid":       display(e.Amount, e.Currency),
			"RemainingBalance": display(remaining, e.Currency),
			"PaymentDate":      e.PaymentDate.Format(dateLayout),
		}
		h.sender.Send(ctx, notification.TemplatePaymentReceived, vars, e.BillingEmail)

	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

func (h *InvoiceHandler) hasRecipient(ctx context.Context, event shared.DomainEvent, d invoice.Details) bool {
	if d.BillingEmail != "" {
		return true
	}
	logger.Enrich(ctx, h.logger).Debug("invoice has no billing email, notification skipped",
		zap.String("event_type", event.EventType()),
		zap.String("invoice_id", d.InvoiceID.String()),
	)
	return false
}

// attachments renders the invoice PDF. A render failure is logged and the
// mail goes out without it.
func (h *InvoiceHandler) attachments(ctx context.Context, invoiceID uuid.UUID) []notification.Attachment {
	if !h.attachPDF || h.documents == nil {
		return nil
	}
	log := logger.Enrich(ctx, h.logger).With(zap.String("invoice_id", invoiceID.String()))

	inv, err := h.reads.Invoices().FindByID(ctx, invoiceID)
	if err != nil {
		log.Warn("invoice lookup for attachment failed", zap.Error(err))
		return nil
	}
	entries, err := h.reads.Payments().FindByInvoice(ctx, invoiceID)
	if err != nil {
		log.Warn("ledger lookup for attachment failed", zap.Error(err))
		return nil
	}
	doc, err := h.documents.Render(ctx, inv, entries)
	if err != nil {
		log.Warn("invoice PDF render failed, sending without attachment", zap.Error(err))
		return nil
	}
	return []notification.Attachment{{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Data:        doc.Data,
	}}
}

var _ shared.EventHandler = (*InvoiceHandler)(nil)

// RefundHandler tells the billing contact of a linked invoice that money
// went back to the card.
type RefundHandler struct {
	sender Sender
	reads  uow.Repositories
	logger *zap.Logger
}

func NewRefundHandler(sender Sender, reads uow.Repositories, log *zap.Logger) *RefundHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RefundHandler{sender: sender, reads: reads, logger: log.Named("refund_notifications")}
}

func (h *RefundHandler) EventTypes() []string {
	return []string{payment.EventTypePaymentRefunded}
}

func (h *RefundHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*payment.PaymentRefundedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", payment.EventTypePaymentRefunded, event.EventType())
	}
	log := logger.Enrich(ctx, h.logger).With(zap.String("intent_id", e.IntentID.String()))
	if e.InvoiceID == nil {
		log.Debug("refund not linked to an invoice, notification skipped")
		return nil
	}
	inv, err := h.reads.Invoices().FindByID(ctx, *e.InvoiceID)
	if err != nil {
		return err
	}
	if inv.BillingEmail == "" {
		log.Debug("invoice has no billing email, notification skipped")
		return nil
	}
	vars := notification.Vars{
		"AmountRefunded": display(e.Amount, e.Currency),
		"Reason":         reasonText(e.Reason),
	}
	h.sender.Send(ctx, notification.TemplatePaymentRefunded, vars, inv.BillingEmail)
	return nil
}

var _ shared.EventHandler = (*RefundHandler)(nil)

func display(minor int64, currency valueobject.Currency) string {
	return valueobject.NewMoney(minor, currency).Display()
}

func facilityName(d invoice.Details) string {
	if d.FacilityName != "" {
		return d.FacilityName
	}
	return "valued customer"
}

func reasonText(reason string) string {
	if reason == "" {
		return "requested by customer"
	}
	return reason
}
