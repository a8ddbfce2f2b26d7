package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
)

// clearEnv blanks every TickTick variable for the test so the developer's
// environment cannot leak in. An empty value counts as unset for viper.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TICKTICK_BASE_URL", "TICKTICK_TOKEN_URL", "TICKTICK_ACCESS_TOKEN",
		"TICKTICK_REFRESH_TOKEN", "TICKTICK_CLIENT_ID", "TICKTICK_CLIENT_SECRET",
		"TICKTICK_RATE_LIMIT_DELAY", "TICKTICK_MAX_RETRIES", "TICKTICK_REQUEST_TIMEOUT",
		"TICKTICK_MAX_REQUESTS_PER_SECOND", "TICKTICK_TOKEN_CACHE", "TICKTICK_TOKEN_CACHE_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTICK_ACCESS_TOKEN", "tok")

	cfg, err := LoadFs(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, ticktick.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, ticktick.DefaultTokenURL, cfg.TokenURL)
	assert.Equal(t, "tok", cfg.AccessToken)
	assert.InDelta(t, 0.2, cfg.RateLimitDelay, 1e-9)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.MaxRequestsPerSecond)
	assert.True(t, cfg.TokenCache)
	assert.False(t, cfg.CanRefresh())
	assert.Empty(t, cfg.Source)
}

func TestLoad_MissingAccessToken(t *testing.T) {
	clearEnv(t)

	_, err := LoadFs(afero.NewMemMapFs(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ticktick.MessageMissingAccessToken)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTICK_ACCESS_TOKEN", "tok")
	t.Setenv("TICKTICK_REFRESH_TOKEN", "ref")
	t.Setenv("TICKTICK_CLIENT_ID", "id")
	t.Setenv("TICKTICK_CLIENT_SECRET", "secret")
	t.Setenv("TICKTICK_RATE_LIMIT_DELAY", "0.5")
	t.Setenv("TICKTICK_MAX_RETRIES", "5")
	t.Setenv("TICKTICK_REQUEST_TIMEOUT", "10s")
	t.Setenv("TICKTICK_MAX_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("TICKTICK_TOKEN_CACHE", "false")

	cfg, err := LoadFs(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.True(t, cfg.CanRefresh())
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.False(t, cfg.TokenCache)

	tc := cfg.TickTick()
	assert.Equal(t, 500*time.Millisecond, tc.RateLimitDelay)
	assert.Equal(t, 10*time.Second, tc.RequestTimeout)
	assert.Equal(t, 2.5, tc.MaxRequestsPerSecond)
	assert.Equal(t, "secret", tc.ClientSecret)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTICK_CLIENT_ID", "from-env")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".env", []byte(
		"TICKTICK_ACCESS_TOKEN=dotenv-token\n"+
			"TICKTICK_CLIENT_ID=from-file\n"+
			"TICKTICK_MAX_RETRIES=4\n"), 0600))

	cfg, err := LoadFs(fs, "")
	require.NoError(t, err)

	assert.Equal(t, ".env", cfg.Source)
	assert.Equal(t, "dotenv-token", cfg.AccessToken)
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.Equal(t, "from-env", cfg.ClientID, "environment wins over .env")
}

func TestLoad_ExplicitYAML(t *testing.T) {
	clearEnv(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/ticktick.yaml", []byte(
		"ticktick_access_token: yaml-token\n"+
			"ticktick_base_url: https://api.dida365.com/open/v1\n"), 0600))

	cfg, err := LoadFs(fs, "/etc/ticktick.yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml-token", cfg.AccessToken)
	assert.Equal(t, "https://api.dida365.com/open/v1", cfg.BaseURL)
	assert.Equal(t, "/etc/ticktick.yaml", cfg.Source)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICKTICK_ACCESS_TOKEN", "tok")

	_, err := LoadFs(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			BaseURL:        ticktick.DefaultBaseURL,
			TokenURL:       ticktick.DefaultTokenURL,
			AccessToken:    "tok",
			RateLimitDelay: 0.2,
			MaxRetries:     3,
			RequestTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad base url", mutate: func(c *Config) { c.BaseURL = "not a url" }, wantErr: "TICKTICK_BASE_URL"},
		{name: "zero delay", mutate: func(c *Config) { c.RateLimitDelay = 0 }, wantErr: "TICKTICK_RATE_LIMIT_DELAY"},
		{name: "too many retries", mutate: func(c *Config) { c.MaxRetries = 11 }, wantErr: "TICKTICK_MAX_RETRIES"},
		{name: "zero retries", mutate: func(c *Config) { c.MaxRetries = 0 }},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: "TICKTICK_MAX_RETRIES"},
		{name: "negative throttle", mutate: func(c *Config) { c.MaxRequestsPerSecond = -1 }, wantErr: "TICKTICK_MAX_REQUESTS_PER_SECOND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
