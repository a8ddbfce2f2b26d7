// Package instrumentation provides OpenTelemetry metrics and tracing for the
// TickTick client and its command line front end.
//
// # Metrics
//
// TickTick API metrics:
//   - ticktick_api_requests_total: Counter of HTTP round trips by method, path, and status
//   - ticktick_api_request_duration_seconds: Histogram of round trip durations
//   - ticktick_api_calls_total: Counter of logical calls by method, path, and outcome
//   - ticktick_token_refresh_total: Counter of token refresh attempts by result
//   - ticktick_rate_limit_retries_total: Counter of backoff retries after a 429
//
// CLI metrics:
//   - cli_command_invocations_total: Counter of command invocations by command and status
//   - cli_command_duration_seconds: Histogram of command durations
//
// Paths are normalized before they become labels, so /project/abc/data is
// recorded as /project/{id}/data.
//
// # Tracing
//
// One client span is created per logical API call (ticktick.<METHOD> <path>)
// with events for token refreshes and rate-limit backoffs, and one root span
// per CLI command (cli.<command>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, none, default: none)
//   - METRICS_TEXTFILE: Write the Prometheus registry to this file on shutdown
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: remote-ticktick-mcp)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(context.Background())
//
//	client, err := ticktick.NewClient(cfg, ticktick.WithMetrics(provider.Metrics()))
package instrumentation
