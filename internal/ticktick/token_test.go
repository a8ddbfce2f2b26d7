package ticktick

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/instrumentation"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
)

func newTestTokenManager(t *testing.T, cfg Config, metrics *instrumentation.Metrics) *TokenManager {
	t.Helper()
	return newTokenManager(cfg.withDefaults(), http.DefaultClient, nil, logging.Discard(), metrics)
}

func TestTokenManager_Refresh(t *testing.T) {
	te := newTokenEndpoint(t, 200, `{"access_token":"new123","refresh_token":"refresh-2","expires_in":3600}`)
	m := newTestTokenManager(t, Config{
		TokenURL:     te.server.URL,
		AccessToken:  "old123",
		RefreshToken: "refresh-1",
		ClientID:     "id",
		ClientSecret: "secret",
	}, nil)

	require.True(t, m.CanRefresh())
	require.True(t, m.Refresh(context.Background(), "old123"))
	assert.Equal(t, Token{AccessToken: "new123", RefreshToken: "refresh-2"}, m.Current())
	assert.Equal(t, basicAuth("id", "secret"), te.basic[0])
}

func TestTokenManager_RefreshRawBasicCredential(t *testing.T) {
	te := newTokenEndpoint(t, 200, `{"access_token":"new123","expires_in":3600}`)
	secret := "s3cr+t/x=y&z%(^"
	m := newTestTokenManager(t, Config{
		TokenURL:     te.server.URL,
		AccessToken:  "old123",
		RefreshToken: "refresh-1",
		ClientID:     "client id",
		ClientSecret: secret,
	}, nil)

	require.True(t, m.Refresh(context.Background(), "old123"))
	require.Len(t, te.basic, 1)
	assert.Equal(t, basicAuth("client id", secret), te.basic[0])
	assert.Equal(t, "refresh_token", te.forms[0].Get("grant_type"))
	assert.Equal(t, "refresh-1", te.forms[0].Get("refresh_token"))
}

func TestTokenManager_StaleRejectionSkipsNetwork(t *testing.T) {
	te := newTokenEndpoint(t, 200, `{"access_token":"newer"}`)
	m := newTestTokenManager(t, Config{
		TokenURL:     te.server.URL,
		AccessToken:  "current",
		RefreshToken: "refresh-1",
		ClientID:     "id",
		ClientSecret: "secret",
	}, nil)

	// The caller saw an older token fail; the current one is already fresh.
	assert.True(t, m.Refresh(context.Background(), "stale"))
	assert.Equal(t, 0, te.callCount())
	assert.Equal(t, "current", m.AccessToken())
}

func TestTokenManager_CannotRefresh(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no refresh token", Config{AccessToken: "a", ClientID: "id", ClientSecret: "s"}},
		{"no client id", Config{AccessToken: "a", RefreshToken: "r", ClientSecret: "s"}},
		{"no client secret", Config{AccessToken: "a", RefreshToken: "r", ClientID: "id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTokenEndpoint(t, 200, `{"access_token":"new"}`)
			tt.cfg.TokenURL = te.server.URL
			m := newTestTokenManager(t, tt.cfg, nil)

			assert.False(t, m.CanRefresh())
			assert.False(t, m.Refresh(context.Background(), "a"))
			assert.Equal(t, 0, te.callCount())
			assert.Equal(t, "a", m.AccessToken())
		})
	}
}

func TestTokenManager_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:     "test",
		Enabled:         true,
		MetricsExporter: instrumentation.ExporterPrometheus,
		TracingExporter: instrumentation.ExporterNone,
	})
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	te := newTokenEndpoint(t, 500, `down`)
	m := newTestTokenManager(t, Config{
		TokenURL:     te.server.URL,
		AccessToken:  "a",
		RefreshToken: "r",
		ClientID:     "id",
		ClientSecret: "s",
	}, provider.Metrics())

	assert.False(t, m.Refresh(ctx, "a"))
	assert.True(t, m.Refresh(ctx, "other"))

	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)

	results := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "ticktick_token_refresh_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "result" {
					results[l.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(1), results[instrumentation.RefreshResultFailure])
	assert.Equal(t, float64(1), results[instrumentation.RefreshResultShared])
}
