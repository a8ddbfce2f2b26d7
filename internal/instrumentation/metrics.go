package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod  = "method"
	attrPath    = "path"
	attrStatus  = "status"
	attrOutcome = "outcome"
	attrResult  = "result"
	attrCommand = "command"
)

// Metrics provides methods for recording observability metrics.
// A nil *Metrics and a zero Metrics are both valid no-op recorders.
type Metrics struct {
	// Upstream HTTP attempts, one per network round trip
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram

	// Logical calls, one per Execute including its retries
	apiCallsTotal metric.Int64Counter

	tokenRefreshTotal  metric.Int64Counter
	rateLimitRetries   metric.Int64Counter
	commandInvocations metric.Int64Counter
	commandDuration    metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all instruments registered on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.apiRequestsTotal, err = meter.Int64Counter(
		"ticktick_api_requests_total",
		metric.WithDescription("Total number of HTTP requests sent to the TickTick API"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticktick_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"ticktick_api_request_duration_seconds",
		metric.WithDescription("TickTick API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticktick_api_request_duration_seconds histogram: %w", err)
	}

	m.apiCallsTotal, err = meter.Int64Counter(
		"ticktick_api_calls_total",
		metric.WithDescription("Total number of logical TickTick API calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticktick_api_calls_total counter: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"ticktick_token_refresh_total",
		metric.WithDescription("Total number of access token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticktick_token_refresh_total counter: %w", err)
	}

	m.rateLimitRetries, err = meter.Int64Counter(
		"ticktick_rate_limit_retries_total",
		metric.WithDescription("Total number of retries after a 429 response"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticktick_rate_limit_retries_total counter: %w", err)
	}

	m.commandInvocations, err = meter.Int64Counter(
		"cli_command_invocations_total",
		metric.WithDescription("Total number of CLI command invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cli_command_invocations_total counter: %w", err)
	}

	m.commandDuration, err = meter.Float64Histogram(
		"cli_command_duration_seconds",
		metric.WithDescription("CLI command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cli_command_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAPIRequest records one HTTP round trip to the TickTick API.
// statusCode is 0 when the request failed before a response was received.
func (m *Metrics) RecordAPIRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return
	}

	status := "transport_error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, NormalizePath(path)),
		attribute.String(attrStatus, status),
	)

	m.apiRequestsTotal.Add(ctx, 1, attrs)
	m.apiRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordAPICall records the outcome of one logical call. outcome is "success"
// or the error kind that ended the call.
func (m *Metrics) RecordAPICall(ctx context.Context, method, path, outcome string) {
	if m == nil || m.apiCallsTotal == nil {
		return
	}

	m.apiCallsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, NormalizePath(path)),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordTokenRefresh records a token refresh attempt.
// Result should be one of the RefreshResult* constants.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.tokenRefreshTotal == nil {
		return
	}

	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordRateLimitRetry records a backoff-and-retry after a 429 response.
func (m *Metrics) RecordRateLimitRetry(ctx context.Context, method, path string) {
	if m == nil || m.rateLimitRetries == nil {
		return
	}

	m.rateLimitRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, NormalizePath(path)),
	))
}

// RecordCommand records a CLI command invocation with status and duration.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string, duration time.Duration) {
	if m == nil || m.commandInvocations == nil || m.commandDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrCommand, command),
		attribute.String(attrStatus, status),
	)

	m.commandInvocations.Add(ctx, 1, attrs)
	m.commandDuration.Record(ctx, duration.Seconds(), attrs)
}
