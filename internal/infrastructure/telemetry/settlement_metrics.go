package telemetry

import (
	"context"
	"time"

	"github.com/transitpay/settlement/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SettlementMetrics are the service level counters. A nil *SettlementMetrics
// records nothing, so callers never need to check.
type SettlementMetrics struct {
	webhooks          *Counter
	intentTransitions *Counter
	ledgerPayments    *Counter
	ledgerAmount      *Counter
	refunds           *Counter
	processorCalls    *Histogram
	outboxDeliveries  *Counter
	notifications     *Counter
}

// NewSettlementMetrics registers the instruments on meter.
func NewSettlementMetrics(meter metric.Meter) (*SettlementMetrics, error) {
	m := &SettlementMetrics{}
	var err error
	counters := []struct {
		dst               **Counter
		name, desc, units string
	}{
		{&m.webhooks, "settlement_webhook_events_total", "Webhook events received by outcome", "{event}"},
		{&m.intentTransitions, "settlement_intent_transitions_total", "Payment intent status transitions", "{transition}"},
		{&m.ledgerPayments, "settlement_ledger_payments_total", "Invoice ledger entries recorded", "{payment}"},
		{&m.ledgerAmount, "settlement_ledger_amount_total", "Invoice payments recorded in minor units", "{minor_unit}"},
		{&m.refunds, "settlement_refunds_total", "Refunds issued", "{refund}"},
		{&m.outboxDeliveries, "settlement_outbox_deliveries_total", "Outbox delivery attempts by resulting status", "{delivery}"},
		{&m.notifications, "settlement_notifications_total", "Notifications sent by template and status", "{notification}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.desc, c.units); err != nil {
			return nil, err
		}
	}
	m.processorCalls, err = NewHistogram(meter,
		"settlement_processor_call_duration_seconds",
		"Payment processor call latency", "s", ProcessorDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordWebhook counts a webhook by event type and outcome (applied,
// duplicate, ignored, rejected, failed).
func (m *SettlementMetrics) RecordWebhook(ctx context.Context, eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhooks.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}

func (m *SettlementMetrics) RecordIntentTransition(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.intentTransitions.Inc(ctx, AttrIntentStatus.String(status))
}

func (m *SettlementMetrics) RecordLedgerPayment(ctx context.Context, method, currency string, amount int64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(method), AttrCurrency.String(currency)}
	m.ledgerPayments.Inc(ctx, attrs...)
	m.ledgerAmount.Add(ctx, amount, attrs...)
}

func (m *SettlementMetrics) RecordRefund(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	m.refunds.Inc(ctx, AttrCurrency.String(currency))
}

// RecordProcessorCall observes one processor round trip. errorKind is empty
// on success.
func (m *SettlementMetrics) RecordProcessorCall(ctx context.Context, operation, errorKind string, d time.Duration) {
	if m == nil {
		return
	}
	if errorKind == "" {
		errorKind = "none"
	}
	m.processorCalls.RecordDuration(ctx, d, AttrOperation.String(operation), AttrErrorKind.String(errorKind))
}

// RecordOutboxDelivery implements event.DeliveryRecorder.
func (m *SettlementMetrics) RecordOutboxDelivery(ctx context.Context, eventType string, status shared.OutboxStatus) {
	if m == nil {
		return
	}
	m.outboxDeliveries.Inc(ctx, AttrEventType.String(eventType), AttrOutboxStatus.String(string(status)))
}

func (m *SettlementMetrics) RecordNotification(ctx context.Context, template, status string) {
	if m == nil {
		return
	}
	m.notifications.Inc(ctx, attribute.String("template", template), AttrOutcome.String(status))
}
