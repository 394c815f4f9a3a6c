package event

import (
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/payment"
)

// RegisterAllEvents registers every settlement event type so the outbox
// processor can decode stored payloads.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(invoice.EventTypeInvoiceSent, &invoice.InvoiceSentEvent{})
	serializer.Register(invoice.EventTypeReminderDue, &invoice.InvoiceReminderDueEvent{})
	serializer.Register(invoice.EventTypeInvoiceOverdue, &invoice.InvoiceOverdueEvent{})
	serializer.Register(invoice.EventTypePaymentReceived, &invoice.PaymentReceivedEvent{})

	serializer.Register(payment.EventTypePaymentRefunded, &payment.PaymentRefundedEvent{})
}
