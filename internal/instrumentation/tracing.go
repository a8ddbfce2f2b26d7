package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the remote-ticktick-mcp module.
const TracerName = "github.com/mayankbohra/remote-ticktick-mcp"

// Span attribute keys.
const (
	// SpanAttrMethod is the HTTP method of the upstream call.
	SpanAttrMethod = "http.request.method"

	// SpanAttrPath is the upstream API path, identifiers included.
	SpanAttrPath = "url.path"

	// SpanAttrStatusCode is the final HTTP status code of the logical call.
	SpanAttrStatusCode = "http.response.status_code"

	// SpanAttrCallID correlates the span with log lines of the same call.
	SpanAttrCallID = "ticktick.call_id"

	// SpanAttrAttempt is the rate-limit attempt counter when the call ended.
	SpanAttrAttempt = "ticktick.attempt"

	// SpanAttrRefreshed is true when the call refreshed the access token.
	SpanAttrRefreshed = "ticktick.refreshed"

	// SpanAttrCommand is the CLI command path.
	SpanAttrCommand = "cli.command"
)

// Span event names.
const (
	EventTokenRefresh = "token_refresh"
	EventBackoff      = "rate_limit_backoff"
)

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartAPICallSpan starts a client span covering one logical TickTick API call,
// including every retry and refresh that happens inside it.
func StartAPICallSpan(ctx context.Context, method, path, callID string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "ticktick."+method+" "+NormalizePath(path),
		trace.WithAttributes(
			attribute.String(SpanAttrMethod, method),
			attribute.String(SpanAttrPath, path),
			attribute.String(SpanAttrCallID, callID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartCommandSpan starts the root span of a CLI command.
func StartCommandSpan(ctx context.Context, command string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "cli."+command,
		trace.WithAttributes(attribute.String(SpanAttrCommand, command)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
