package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestSetup_AllDisabled(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, config.TelemetryConfig{ServiceName: "settlement"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Logs.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())
	assert.NotNil(t, p.Meter.Meter("test"))
	assert.IsType(t, zapcore.NewNopCore(), p.Logs.ZapCore("settlement", zapcore.InfoLevel))
	require.NoError(t, p.Shutdown(ctx))
}

func TestNewProfiler_RequiresEndpoint(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true}, zap.NewNop())
	require.Error(t, err)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	s, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

func TestSettlementMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	m, err := NewSettlementMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.RecordWebhook(ctx, "payment_intent.succeeded", "applied")
	m.RecordWebhook(ctx, "payment_intent.succeeded", "duplicate")
	m.RecordIntentTransition(ctx, "SUCCEEDED")
	m.RecordLedgerPayment(ctx, "card", "usd", 405000)
	m.RecordLedgerPayment(ctx, "ach", "usd", 5000)
	m.RecordRefund(ctx, "usd")
	m.RecordOutboxDelivery(ctx, "invoice.sent", shared.OutboxStatusSent)
	m.RecordNotification(ctx, "INVOICE_SENT", "SENT")
	m.RecordProcessorCall(ctx, "capture", "", 120*time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["settlement_webhook_events_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["settlement_intent_transitions_total"]))
	assert.Equal(t, int64(2), sumOf(t, got["settlement_ledger_payments_total"]))
	assert.Equal(t, int64(410000), sumOf(t, got["settlement_ledger_amount_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["settlement_refunds_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["settlement_outbox_deliveries_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["settlement_notifications_total"]))

	h, ok := got["settlement_processor_call_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)
	kind, _ := h.DataPoints[0].Attributes.Value(AttrErrorKind)
	assert.Equal(t, "none", kind.AsString())
}

func TestSettlementMetrics_NilIsNoop(t *testing.T) {
	var m *SettlementMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordWebhook(ctx, "x", "applied")
		m.RecordIntentTransition(ctx, "SUCCEEDED")
		m.RecordLedgerPayment(ctx, "card", "usd", 1)
		m.RecordRefund(ctx, "usd")
		m.RecordOutboxDelivery(ctx, "x", shared.OutboxStatusSent)
		m.RecordNotification(ctx, "x", "SENT")
		m.RecordProcessorCall(ctx, "x", "", time.Second)
	})
}

func TestLevelFilterCore(t *testing.T) {
	base, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(&levelFilterCore{Core: base, minLevel: zapcore.WarnLevel}).With(zap.String("svc", "settlement"))

	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept too")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "settlement", logs.All()[0].ContextMap()["svc"])
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestStartSpan(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartSpan(context.Background(), "webhook.dispatch", AttrEventType.String("charge.refunded"))
	EndSpan(span, errors.New("lock timeout"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "webhook.dispatch", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("settlement.event_type", "charge.refunded"))
}

func TestRegisterDBTracing(t *testing.T) {
	newDB := func(t *testing.T) *gorm.DB {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
		require.NoError(t, err)
		return db
	}

	t.Run("disabled is a no-op", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{}, zap.NewNop()))
		assert.Nil(t, db.Callback().Query().Get("settle_slow:query"))
	})

	t.Run("enabled records statement spans", func(t *testing.T) {
		rec := withRecorder(t)
		db := newDB(t)
		require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{DBTraceEnabled: true}, zap.NewNop()))
		assert.NotNil(t, db.Callback().Query().Get("settle_slow:query"))

		var n int
		require.NoError(t, db.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error)
		assert.Equal(t, 1, n)
		assert.NotEmpty(t, rec.Ended())
	})
}

func TestWithProfilingLabels_RunsFn(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called++ })
	WithProfilingLabels(context.Background(), map[string]string{"event_type": "invoice.sent"}, func(context.Context) { called++ })
	assert.Equal(t, 2, called)
}
