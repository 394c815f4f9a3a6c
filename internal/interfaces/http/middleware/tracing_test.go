package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func tracedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Tracing("settlement-test"), SpanEnricher(), SpanErrorMarker())
	r.GET("/api/v1/intents/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/intents/:id/capture", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "PROCESSOR_UNAVAILABLE")
		c.Status(http.StatusServiceUnavailable)
	})
	r.POST("/api/v1/invoices", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "VALIDATION_FAILED")
		c.Status(http.StatusUnprocessableEntity)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		spanName   string
		statusCode codes.Code
		errorCode  string
	}{
		{"success", http.MethodGet, "/api/v1/intents/abc", "GET /api/v1/intents/:id", codes.Unset, ""},
		{"server error marks span", http.MethodPost, "/api/v1/intents/abc/capture", "POST /api/v1/intents/:id/capture", codes.Error, "PROCESSOR_UNAVAILABLE"},
		{"client error is not a span error", http.MethodPost, "/api/v1/invoices", "POST /api/v1/invoices", codes.Unset, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(RequestIDHeader, "req-trace-1")
			serve(tracedEngine(), req)

			spans := sr.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, tt.spanName, span.Name())
			assert.Equal(t, tt.statusCode, span.Status().Code)

			attrs := attrsOf(span)
			assert.Equal(t, "req-trace-1", attrs["request_id"].AsString())
			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, attrs["error.code"].AsString())
			}
		})
	}
}

func TestTracing_SkipsHealth(t *testing.T) {
	sr := setupTestTracer(t)
	serve(tracedEngine(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, sr.Ended())
}
