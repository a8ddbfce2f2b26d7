package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{}, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestStartAPICallSpan(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartAPICallSpan(context.Background(), "POST", "/project/abc/task/t1/complete", "call-1")
	assert.NotEmpty(t, GetTraceID(ctx))
	AddSpanEvent(span, EventTokenRefresh, attribute.Bool("success", true))
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "ticktick.POST /project/{id}/task/{id}/complete", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "POST", attrs[SpanAttrMethod])
	assert.Equal(t, "/project/abc/task/t1/complete", attrs[SpanAttrPath])
	assert.Equal(t, "call-1", attrs[SpanAttrCallID])

	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, EventTokenRefresh, ended[0].Events()[0].Name)
}

func TestStartCommandSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "projects list")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "cli.projects list", ended[0].Name())
	assert.Equal(t, "projects list", attrMap(ended[0].Attributes())[SpanAttrCommand])
}

func TestSetSpanError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartSpan(context.Background(), "test-span")
	SetSpanError(span, nil) // nil error should be safe
	SetSpanError(span, errors.New("test error"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "test error", ended[0].Status().Description)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if traceID := GetTraceID(context.Background()); traceID != "" {
		t.Errorf("expected empty trace ID for context without span, got %q", traceID)
	}
}
