package ticktick

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
)

// response is one scripted upstream reply.
type response struct {
	status int
	body   string
}

// recordedRequest is what the mock upstream saw.
type recordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          string
}

// upstream is a scripted TickTick API. Replies are served in order; the last
// one repeats once the script runs out.
type upstream struct {
	t      *testing.T
	mu     sync.Mutex
	script []response
	reqs   []recordedRequest
	server *httptest.Server
}

func newUpstream(t *testing.T, script ...response) *upstream {
	t.Helper()
	u := &upstream{t: t, script: script}
	u.server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.reqs = append(u.reqs, recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	var resp response
	if len(u.script) > 0 {
		resp = u.script[0]
		if len(u.script) > 1 {
			u.script = u.script[1:]
		}
	}
	u.mu.Unlock()

	if resp.status == 0 {
		resp.status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (u *upstream) requests() []recordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]recordedRequest(nil), u.reqs...)
}

// tokenEndpoint is a mock OAuth2 token endpoint.
type tokenEndpoint struct {
	mu     sync.Mutex
	calls  int
	forms  []url.Values
	basic  []string
	status int
	body   string
	delay  time.Duration
	server *httptest.Server
}

func newTokenEndpoint(t *testing.T, status int, body string) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{status: status, body: body}
	te.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		te.mu.Lock()
		te.calls++
		te.forms = append(te.forms, r.PostForm)
		te.basic = append(te.basic, r.Header.Get("Authorization"))
		delay := te.delay
		te.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(te.status)
		_, _ = io.WriteString(w, te.body)
	}))
	t.Cleanup(te.server.Close)
	return te
}

func (te *tokenEndpoint) callCount() int {
	te.mu.Lock()
	defer te.mu.Unlock()
	return te.calls
}

func basicAuth(id, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(id+":"+secret))
}

// sleepRecorder is a Sleeper that records waits instead of blocking.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

// testConfig returns a refresh-capable config pointing at the mocks.
func testConfig(api *upstream, te *tokenEndpoint) Config {
	cfg := Config{
		BaseURL:        api.server.URL,
		AccessToken:    "old123",
		RefreshToken:   "refresh-1",
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RateLimitDelay: 200 * time.Millisecond,
		MaxRetries:     3,
	}
	if te != nil {
		cfg.TokenURL = te.server.URL
	}
	return cfg
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	c, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
