package ticktick

import (
	"time"
)

// Defaults for the zero fields of Config. MaxRetries takes its default only
// when negative.
const (
	DefaultBaseURL        = "https://api.ticktick.com/open/v1"
	DefaultTokenURL       = "https://ticktick.com/oauth/token"
	DefaultRateLimitDelay = 200 * time.Millisecond
	DefaultMaxRetries     = 3
	DefaultRequestTimeout = 30 * time.Second

	// DefaultUserAgent is sent on every API request. The TickTick edge
	// rejects some library user agents.
	DefaultUserAgent = "curl/8.7.1"
)

// Config holds what the client needs to talk to TickTick.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// TokenURL is the OAuth2 token endpoint used for refreshes.
	TokenURL string

	// AccessToken is required.
	AccessToken string

	// RefreshToken, ClientID and ClientSecret are all needed for refreshes.
	RefreshToken string
	ClientID     string
	ClientSecret string

	// RateLimitDelay is the first backoff wait after a 429; it doubles on
	// every further retry.
	RateLimitDelay time.Duration

	// MaxRetries bounds the 429 retries of a single call. 0 means a single
	// attempt; a negative value selects DefaultMaxRetries.
	MaxRetries int

	// RequestTimeout bounds each HTTP attempt, not the whole call.
	RequestTimeout time.Duration

	// MaxRequestsPerSecond throttles outgoing attempts. 0 disables throttling.
	MaxRequestsPerSecond float64

	UserAgent string
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.RateLimitDelay <= 0 {
		c.RateLimitDelay = DefaultRateLimitDelay
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
