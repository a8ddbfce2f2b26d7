package ticktick

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/instrumentation"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
)

// Token is the bearer/refresh token pair currently held by the client.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenObserver is called with the new pair after every successful refresh.
type TokenObserver func(Token)

// TokenManager owns the mutable token pair and performs refresh-token
// exchanges. Refreshes are serialized; reads never wait on the network.
type TokenManager struct {
	mu    sync.RWMutex
	token Token

	// refreshMu is held for the whole exchange so concurrent 401s
	// produce one refresh.
	refreshMu sync.Mutex

	oauth      oauth2.Config
	httpClient *http.Client
	observer   TokenObserver
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

func newTokenManager(cfg Config, httpClient *http.Client, observer TokenObserver, logger logging.Logger, metrics *instrumentation.Metrics) *TokenManager {
	return &TokenManager{
		token: Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
		},
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: basicAuthClient(httpClient, cfg.ClientID, cfg.ClientSecret),
		observer:   observer,
		logger:     logger,
		metrics:    metrics,
	}
}

// Current returns the current token pair.
func (m *TokenManager) Current() Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// AccessToken returns the bearer token to send on the next request.
func (m *TokenManager) AccessToken() string {
	return m.Current().AccessToken
}

// CanRefresh reports whether a refresh token and client credentials are configured.
func (m *TokenManager) CanRefresh() bool {
	return m.Current().RefreshToken != "" && m.oauth.ClientID != "" && m.oauth.ClientSecret != ""
}

// Refresh exchanges the refresh token for a new access token. rejected is the
// access token the caller saw fail; if another call has already replaced it,
// Refresh reports success without contacting the token endpoint.
//
// Refresh never returns an error: on any failure it logs, leaves the token
// pair untouched and returns false.
func (m *TokenManager) Refresh(ctx context.Context, rejected string) bool {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	current := m.Current()
	if current.AccessToken != rejected {
		m.logger.Debug("Access token already refreshed by a concurrent call")
		m.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultShared)
		return true
	}

	if current.RefreshToken == "" {
		m.logger.Warn("No refresh token available. Cannot refresh access token.")
		m.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultSkipped)
		return false
	}
	if m.oauth.ClientID == "" || m.oauth.ClientSecret == "" {
		m.logger.Warn("Client ID or Client Secret missing. Cannot refresh access token.")
		m.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultSkipped)
		return false
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	// An empty access token forces the token source to hit the endpoint.
	tok, err := m.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		m.logger.Error("Error refreshing access token", logging.Err(err))
		m.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultFailure)
		return false
	}
	if tok.AccessToken == "" {
		m.logger.Error("Error refreshing access token: response carried no access_token")
		m.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultFailure)
		return false
	}

	next := Token{AccessToken: tok.AccessToken, RefreshToken: current.RefreshToken}
	// Servers may omit rotation; keep the old refresh token then.
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}

	m.mu.Lock()
	m.token = next
	m.mu.Unlock()

	m.logger.Info("Access token refreshed successfully",
		"access_token", logging.SanitizeToken(next.AccessToken),
		"rotated", next.RefreshToken != current.RefreshToken,
	)
	m.metrics.RecordTokenRefresh(ctx, instrumentation.RefreshResultSuccess)

	if m.observer != nil {
		m.observer(next)
	}
	return true
}

// basicAuthTransport sets the Basic credential from the raw client id and
// secret. x/oauth2 URL-escapes both before encoding, which the TickTick token
// endpoint does not expect.
type basicAuthTransport struct {
	id, secret string
	base       http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.id, t.secret)
	return t.base.RoundTrip(req)
}

// basicAuthClient returns a copy of hc whose requests carry the raw Basic
// credential.
func basicAuthClient(hc *http.Client, id, secret string) *http.Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *hc
	wrapped.Transport = &basicAuthTransport{id: id, secret: secret, base: base}
	return &wrapped
}
