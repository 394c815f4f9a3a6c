package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of settlement spans.
const TracerName = "github.com/transitpay/settlement"

// StartSpan starts an internal span on the global tracer.
//
//	ctx, span := telemetry.StartSpan(ctx, "webhook.dispatch", attribute.String("event.type", t))
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Attribute keys shared by spans and metrics.
var (
	AttrEventType     = attribute.Key("settlement.event_type")
	AttrOutcome       = attribute.Key("settlement.outcome")
	AttrIntentStatus  = attribute.Key("settlement.intent_status")
	AttrPaymentMethod = attribute.Key("settlement.payment_method")
	AttrOperation     = attribute.Key("settlement.operation")
	AttrErrorKind     = attribute.Key("settlement.error_kind")
	AttrCurrency      = attribute.Key("settlement.currency")
	AttrOutboxStatus  = attribute.Key("settlement.outbox_status")
)
