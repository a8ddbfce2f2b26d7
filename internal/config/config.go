// Package config loads the TickTick client configuration from the
// environment, an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
)

// Configuration keys. The environment variable is the upper-cased key.
const (
	KeyBaseURL              = "ticktick_base_url"
	KeyTokenURL             = "ticktick_token_url"
	KeyAccessToken          = "ticktick_access_token"
	KeyRefreshToken         = "ticktick_refresh_token"
	KeyClientID             = "ticktick_client_id"
	KeyClientSecret         = "ticktick_client_secret"
	KeyRateLimitDelay       = "ticktick_rate_limit_delay"
	KeyMaxRetries           = "ticktick_max_retries"
	KeyRequestTimeout       = "ticktick_request_timeout"
	KeyMaxRequestsPerSecond = "ticktick_max_requests_per_second"
	KeyTokenCache           = "ticktick_token_cache"
	KeyTokenCachePath       = "ticktick_token_cache_path"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Config is the validated process configuration.
type Config struct {
	BaseURL      string `mapstructure:"ticktick_base_url" validate:"required,url"`
	TokenURL     string `mapstructure:"ticktick_token_url" validate:"required,url"`
	AccessToken  string `mapstructure:"ticktick_access_token" validate:"required"`
	RefreshToken string `mapstructure:"ticktick_refresh_token"`
	ClientID     string `mapstructure:"ticktick_client_id"`
	ClientSecret string `mapstructure:"ticktick_client_secret"`

	// RateLimitDelay is in seconds, as in TICKTICK_RATE_LIMIT_DELAY=0.2.
	RateLimitDelay       float64       `mapstructure:"ticktick_rate_limit_delay" validate:"gt=0"`
	MaxRetries           int           `mapstructure:"ticktick_max_retries" validate:"gte=0,lte=10"`
	RequestTimeout       time.Duration `mapstructure:"ticktick_request_timeout" validate:"gt=0"`
	MaxRequestsPerSecond float64       `mapstructure:"ticktick_max_requests_per_second" validate:"gte=0"`

	TokenCache     bool   `mapstructure:"ticktick_token_cache"`
	TokenCachePath string `mapstructure:"ticktick_token_cache_path"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-"`
}

// Load reads the configuration from the OS filesystem. See LoadFs.
func Load(path string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs reads the configuration. Environment variables win over the file;
// the file wins over defaults. path names an explicit config file (yaml,
// json, toml or .env); when empty, ./.env is used if it exists.
func LoadFs(fs afero.Fs, path string) (*Config, error) {
	vip := viper.New()
	vip.SetFs(fs)

	vip.SetDefault(KeyBaseURL, ticktick.DefaultBaseURL)
	vip.SetDefault(KeyTokenURL, ticktick.DefaultTokenURL)
	vip.SetDefault(KeyAccessToken, "")
	vip.SetDefault(KeyRefreshToken, "")
	vip.SetDefault(KeyClientID, "")
	vip.SetDefault(KeyClientSecret, "")
	vip.SetDefault(KeyRateLimitDelay, ticktick.DefaultRateLimitDelay.Seconds())
	vip.SetDefault(KeyMaxRetries, ticktick.DefaultMaxRetries)
	vip.SetDefault(KeyRequestTimeout, ticktick.DefaultRequestTimeout)
	vip.SetDefault(KeyMaxRequestsPerSecond, 0)
	vip.SetDefault(KeyTokenCache, true)
	vip.SetDefault(KeyTokenCachePath, "")

	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	source, err := readConfigFile(fs, vip, path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readConfigFile loads the explicit file, or the optional .env file, into vip.
func readConfigFile(fs afero.Fs, vip *viper.Viper, path string) (string, error) {
	if path == "" {
		exists, err := afero.Exists(fs, DotEnvFile)
		if err != nil || !exists {
			return "", nil
		}
		path = DotEnvFile
	}

	vip.SetConfigFile(path)
	if base := filepath.Base(path); base == DotEnvFile || strings.HasSuffix(base, ".env") {
		vip.SetConfigType("env")
	}
	if err := vip.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return path, nil
}

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	env := envName(fe.StructField())
	if fe.Tag() == "required" {
		if fe.StructField() == "AccessToken" {
			return ticktick.MessageMissingAccessToken
		}
		return env + " is required"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", env, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s must be a valid %s, got %v", env, fe.Tag(), fe.Value())
}

var envNames = map[string]string{
	"BaseURL":              KeyBaseURL,
	"TokenURL":             KeyTokenURL,
	"AccessToken":          KeyAccessToken,
	"RateLimitDelay":       KeyRateLimitDelay,
	"MaxRetries":           KeyMaxRetries,
	"RequestTimeout":       KeyRequestTimeout,
	"MaxRequestsPerSecond": KeyMaxRequestsPerSecond,
}

func envName(field string) string {
	if key, ok := envNames[field]; ok {
		return strings.ToUpper(key)
	}
	return field
}

// CanRefresh reports whether the refresh token and client credentials are set.
func (c *Config) CanRefresh() bool {
	return c.RefreshToken != "" && c.ClientID != "" && c.ClientSecret != ""
}

// TickTick returns the client configuration.
func (c *Config) TickTick() ticktick.Config {
	return ticktick.Config{
		BaseURL:              c.BaseURL,
		TokenURL:             c.TokenURL,
		AccessToken:          c.AccessToken,
		RefreshToken:         c.RefreshToken,
		ClientID:             c.ClientID,
		ClientSecret:         c.ClientSecret,
		RateLimitDelay:       time.Duration(c.RateLimitDelay * float64(time.Second)),
		MaxRetries:           c.MaxRetries,
		RequestTimeout:       c.RequestTimeout,
		MaxRequestsPerSecond: c.MaxRequestsPerSecond,
	}
}
