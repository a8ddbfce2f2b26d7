package ticktick

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies the error outcome of a call.
type Kind int

const (
	// KindConfiguration means the client could not be constructed.
	KindConfiguration Kind = iota + 1
	// KindAuthFailure means the access token was rejected and could not be refreshed.
	KindAuthFailure
	// KindRetryExhausted means the call was still rate limited after the retry budget.
	KindRetryExhausted
	// KindUpstream is any other non-2xx response. Status and Body are set.
	KindUpstream
	// KindTransport is a network, timeout or cancellation failure.
	KindTransport
	// KindDecode means a successful response carried an undecodable body.
	KindDecode
	// KindInvalidInput means the request was rejected before being sent.
	KindInvalidInput
)

// String returns the label used for metrics and logs.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthFailure:
		return "auth_failure"
	case KindRetryExhausted:
		return "retry_exhausted"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// User-facing messages of the terminal outcomes.
const (
	MessageMissingAccessToken = "TICKTICK_ACCESS_TOKEN environment variable is not set. Please set up your TickTick credentials in environment variables."
	MessageRefreshFailed      = "Failed to refresh access token. Please update your credentials."
	MessageRateLimited        = "Rate limit exceeded. Please try again later."
	MessageRetriesExhausted   = "Request failed after retries"
)

// Error is the error returned by every Client operation.
// Message is meant to be shown to the end user as is.
type Error struct {
	Kind    Kind
	Message string

	// Status and Body of the final upstream response, when there was one.
	Status int
	Body   string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newUpstreamError(status int, body []byte) *Error {
	return &Error{
		Kind:    KindUpstream,
		Message: fmt.Sprintf("API error: %d - %s", status, body),
		Status:  status,
		Body:    string(body),
	}
}

func newTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

func newInputError(err error) *Error {
	return &Error{Kind: KindInvalidInput, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsAuthFailure reports whether err means the credentials need to be updated.
func IsAuthFailure(err error) bool {
	return KindOf(err) == KindAuthFailure
}

// IsRateLimited reports whether err is a rate limit that outlasted the retries.
func IsRateLimited(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRetryExhausted && e.Status == http.StatusTooManyRequests
}

// IsNotFound reports whether the upstream answered 404.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUpstream && e.Status == http.StatusNotFound
}
