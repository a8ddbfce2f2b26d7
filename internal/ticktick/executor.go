package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/instrumentation"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
)

// callState is a state of the per-call state machine.
type callState int

const (
	stateSending callState = iota
	stateAwaitingRefresh
	stateBackoff
	stateDone
)

// Sleeper blocks for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepContext is the default Sleeper.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// call is the state of one logical Execute.
type call struct {
	method string
	path   string
	body   []byte
	id     string

	attempt   int
	refreshed bool
	// rejected is the access token that received the 401.
	rejected string
	status   int
	waits    backoff.BackOff

	payload json.RawMessage
	err     *Error

	log  logging.Logger
	span trace.Span
}

// Execute performs one logical call against the TickTick API. body, when not
// nil, is encoded as JSON. A 401 is answered with at most one token refresh
// and a replay; a 429 is retried with exponential backoff up to MaxRetries
// times. The returned error is always an *Error.
//
// A 204 or empty response body yields a nil payload and a nil error.
//
// Execute panics if method is not GET, POST or DELETE.
func (c *Client) Execute(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		panic(fmt.Sprintf("ticktick: unsupported HTTP method %q", method))
	}

	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return nil, newInputError(fmt.Errorf("failed to encode request body: %w", err))
		}
	}

	cl := &call{
		method: method,
		path:   path,
		body:   encoded,
		id:     uuid.NewString(),
		waits:  c.newBackOff(),
	}
	cl.log = c.logger.With(logging.CallID(cl.id), logging.Method(method), logging.Path(path))

	ctx, span := instrumentation.StartAPICallSpan(ctx, method, path, cl.id)
	defer span.End()
	cl.span = span

	start := c.now()
	state := stateSending
	for state != stateDone {
		switch state {
		case stateSending:
			state = c.send(ctx, cl)
		case stateAwaitingRefresh:
			state = c.refresh(ctx, cl)
		case stateBackoff:
			state = c.wait(ctx, cl)
		}
	}

	c.finish(ctx, cl, c.now().Sub(start))
	if cl.err != nil {
		return nil, cl.err
	}
	return cl.payload, nil
}

// newBackOff returns the wait schedule of one call: RateLimitDelay doubled
// on every retry, without jitter.
func (c *Client) newBackOff() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.cfg.RateLimitDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Hour,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

func (c *Client) send(ctx context.Context, cl *call) callState {
	if cl.attempt > c.cfg.MaxRetries {
		cl.err = &Error{Kind: KindRetryExhausted, Message: MessageRetriesExhausted, Status: cl.status}
		return stateDone
	}

	token := c.tokens.AccessToken()
	status, body, err := c.roundTrip(ctx, cl, token)
	if err != nil {
		cl.log.Error("Request error", logging.Err(err))
		cl.err = newTransportError(err)
		return stateDone
	}
	cl.status = status

	switch {
	case status == http.StatusUnauthorized && !cl.refreshed:
		cl.log.Info("Access token expired. Attempting to refresh...")
		cl.rejected = token
		return stateAwaitingRefresh

	case status == http.StatusTooManyRequests:
		if cl.attempt < c.cfg.MaxRetries {
			return stateBackoff
		}
		cl.log.Error("Rate limit exceeded", "max_retries", c.cfg.MaxRetries)
		cl.err = &Error{Kind: KindRetryExhausted, Message: MessageRateLimited, Status: status, Body: string(body)}
		return stateDone

	case status >= http.StatusBadRequest:
		cl.log.Error("API request failed", logging.StatusCode(status), "body", string(body))
		cl.err = newUpstreamError(status, body)
		return stateDone
	}

	if status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return stateDone
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		cl.log.Error("Failed to decode response", logging.StatusCode(status), logging.Err(err))
		cl.err = &Error{Kind: KindDecode, Message: fmt.Sprintf("invalid JSON in response: %v", err), Status: status, Body: string(body), Err: err}
		return stateDone
	}
	cl.payload = payload
	return stateDone
}

func (c *Client) refresh(ctx context.Context, cl *call) callState {
	cl.refreshed = true

	ok := c.tokens.Refresh(ctx, cl.rejected)
	instrumentation.AddSpanEvent(cl.span, instrumentation.EventTokenRefresh, attribute.Bool("success", ok))
	if !ok {
		cl.err = &Error{Kind: KindAuthFailure, Message: MessageRefreshFailed, Status: http.StatusUnauthorized}
		return stateDone
	}
	// Replay at the same attempt.
	return stateSending
}

func (c *Client) wait(ctx context.Context, cl *call) callState {
	wait := cl.waits.NextBackOff()
	cl.log.Warn(fmt.Sprintf("Rate limit hit (429). Retrying in %.2fs (attempt %d/%d)", wait.Seconds(), cl.attempt+1, c.cfg.MaxRetries),
		logging.Attempt(cl.attempt+1), logging.Wait(wait))
	c.metrics.RecordRateLimitRetry(ctx, cl.method, cl.path)
	instrumentation.AddSpanEvent(cl.span, instrumentation.EventBackoff,
		attribute.Int(instrumentation.SpanAttrAttempt, cl.attempt+1),
		attribute.String("wait", wait.String()),
	)

	if err := c.sleep(ctx, wait); err != nil {
		cl.err = newTransportError(err)
		return stateDone
	}
	cl.attempt++
	return stateSending
}

// roundTrip sends one HTTP request with the given bearer token and returns
// the status and the fully read body.
func (c *Client) roundTrip(ctx context.Context, cl *call, token string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	var reqBody io.Reader
	if cl.body != nil {
		reqBody = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.cfg.BaseURL+cl.path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := c.now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, cl.method, cl.path, 0, c.now().Sub(start))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.RecordAPIRequest(ctx, cl.method, cl.path, resp.StatusCode, c.now().Sub(start))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	cl.log.Debug("TickTick API response", logging.StatusCode(resp.StatusCode), logging.Attempt(cl.attempt))
	return resp.StatusCode, body, nil
}

// finish records the outcome of a call on its span and metrics.
func (c *Client) finish(ctx context.Context, cl *call, elapsed time.Duration) {
	outcome := instrumentation.StatusSuccess
	if cl.err != nil {
		outcome = cl.err.Kind.String()
	}
	c.metrics.RecordAPICall(ctx, cl.method, cl.path, outcome)

	cl.span.SetAttributes(
		attribute.Int(instrumentation.SpanAttrStatusCode, cl.status),
		attribute.Int(instrumentation.SpanAttrAttempt, cl.attempt),
		attribute.Bool(instrumentation.SpanAttrRefreshed, cl.refreshed),
	)
	if cl.err != nil {
		instrumentation.SetSpanError(cl.span, cl.err)
		return
	}
	instrumentation.SetSpanSuccess(cl.span)
	cl.log.Debug("TickTick API call completed", logging.Duration(elapsed), logging.Status(logging.StatusSuccess))
}
