package instrumentation

import (
	"context"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrometheusProvider(t *testing.T) *Provider {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

// findFamily gathers the provider's registry and returns the named family.
func findFamily(t *testing.T, p *Provider, name string) *dto.MetricFamily {
	t.Helper()

	families, err := p.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	var m *Metrics
	m.RecordAPIRequest(ctx, "GET", "/project", 200, time.Millisecond)
	m.RecordAPICall(ctx, "GET", "/project", StatusSuccess)
	m.RecordTokenRefresh(ctx, RefreshResultSuccess)
	m.RecordRateLimitRetry(ctx, "GET", "/project")
	m.RecordCommand(ctx, "projects list", StatusSuccess, time.Millisecond)

	zero := &Metrics{}
	zero.RecordAPIRequest(ctx, "GET", "/project", 200, time.Millisecond)
	zero.RecordCommand(ctx, "projects list", StatusSuccess, time.Millisecond)
}

func TestMetrics_RecordAPIRequest(t *testing.T) {
	ctx := context.Background()
	provider := newPrometheusProvider(t)
	metrics := provider.Metrics()

	metrics.RecordAPIRequest(ctx, "GET", "/project/p1/data", 200, 50*time.Millisecond)
	metrics.RecordAPIRequest(ctx, "GET", "/project/p2/data", 200, 20*time.Millisecond)
	metrics.RecordAPIRequest(ctx, "POST", "/task", 0, time.Second)

	family := findFamily(t, provider, "ticktick_api_requests_total")

	counts := map[string]float64{}
	for _, m := range family.GetMetric() {
		l := labels(m)
		counts[l["method"]+" "+l["path"]+" "+l["status"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(2), counts["GET /project/{id}/data 200"])
	assert.Equal(t, float64(1), counts["POST /task transport_error"])
}

func TestMetrics_RecordAPICall(t *testing.T) {
	ctx := context.Background()
	provider := newPrometheusProvider(t)

	provider.Metrics().RecordAPICall(ctx, "DELETE", "/project/p1/task/t1", "retry_exhausted")

	family := findFamily(t, provider, "ticktick_api_calls_total")
	require.Len(t, family.GetMetric(), 1)
	l := labels(family.GetMetric()[0])
	assert.Equal(t, "/project/{id}/task/{id}", l["path"])
	assert.Equal(t, "retry_exhausted", l["outcome"])
}

func TestMetrics_RecordTokenRefresh(t *testing.T) {
	ctx := context.Background()
	provider := newPrometheusProvider(t)
	metrics := provider.Metrics()

	metrics.RecordTokenRefresh(ctx, RefreshResultSuccess)
	metrics.RecordTokenRefresh(ctx, RefreshResultFailure)
	metrics.RecordTokenRefresh(ctx, RefreshResultFailure)

	family := findFamily(t, provider, "ticktick_token_refresh_total")
	byResult := map[string]float64{}
	for _, m := range family.GetMetric() {
		byResult[labels(m)["result"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(1), byResult[RefreshResultSuccess])
	assert.Equal(t, float64(2), byResult[RefreshResultFailure])
}

func TestMetrics_RecordRateLimitRetry(t *testing.T) {
	ctx := context.Background()
	provider := newPrometheusProvider(t)

	provider.Metrics().RecordRateLimitRetry(ctx, "GET", "/project")
	provider.Metrics().RecordRateLimitRetry(ctx, "GET", "/project")

	family := findFamily(t, provider, "ticktick_rate_limit_retries_total")
	require.Len(t, family.GetMetric(), 1)
	assert.Equal(t, float64(2), family.GetMetric()[0].GetCounter().GetValue())
}

func TestMetrics_RecordCommand(t *testing.T) {
	ctx := context.Background()
	provider := newPrometheusProvider(t)

	provider.Metrics().RecordCommand(ctx, "tasks query", StatusError, 250*time.Millisecond)

	family := findFamily(t, provider, "cli_command_invocations_total")
	require.Len(t, family.GetMetric(), 1)
	l := labels(family.GetMetric()[0])
	assert.Equal(t, "tasks query", l["command"])
	assert.Equal(t, StatusError, l["status"])
}
