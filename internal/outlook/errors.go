package outlook

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Sentinel errors for the failure kinds a caller can branch on with
// errors.Is. Every error returned by a service call matches exactly one
// of these (plus ErrAlreadySent for builder misuse, which never reaches
// the network).
var (
	// ErrValidation indicates a client-detected precondition failure,
	// such as sending a message with no recipients. No request was made.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication indicates the remote store rejected the bearer
	// token (401) or the token lacks the required scope (403).
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound indicates the requested resource does not exist (404).
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimit indicates the remote store is throttling the caller
	// (429). The wrapped *Error carries the Retry-After hint if the
	// response included one.
	ErrRateLimit = errors.New("rate limited")

	// ErrRequest indicates the remote store rejected the request as
	// malformed (remaining 4xx codes, typically 400).
	ErrRequest = errors.New("request rejected")

	// ErrServer indicates a 5xx response from the remote store.
	ErrServer = errors.New("server error")

	// ErrNetwork indicates a transport-level failure below HTTP
	// semantics (DNS, connection refused, timeout).
	ErrNetwork = errors.New("network failure")

	// ErrAlreadySent indicates an attempt to mutate or resend a message
	// builder that has already been sent.
	ErrAlreadySent = errors.New("message already sent")
)

// Error is the error type returned by all account and service
// operations. Callers match the failure kind with errors.Is against the
// package sentinels.
type Error struct {
	// Op is the operation that failed (e.g. "messages.send").
	Op string

	// Kind is one of the package sentinel errors.
	Kind error

	// Status is the HTTP status code, or zero for failures that never
	// produced a response.
	Status int

	// RetryAfter is the server's retry hint for rate-limited requests,
	// zero when the response carried none. Only set when Kind is
	// ErrRateLimit.
	RetryAfter time.Duration

	// Message is the error description from the response body, if the
	// remote store provided one.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("outlook %s: %v", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// validationError reports a client-detected precondition failure.
func validationError(op, format string, args ...any) *Error {
	return &Error{Op: op, Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// networkError wraps a transport-level failure.
func networkError(op string, err error) *Error {
	return &Error{Op: op, Kind: ErrNetwork, Err: err}
}

// statusError translates a non-2xx response into the error taxonomy.
func statusError(op string, resp *http.Response, body []byte) *Error {
	e := &Error{
		Op:      op,
		Status:  resp.StatusCode,
		Message: apiErrorMessage(body),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		e.Kind = ErrAuthentication
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Kind = ErrRateLimit
		e.RetryAfter = retryAfterHint(resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		e.Kind = ErrServer
	default:
		e.Kind = ErrRequest
	}

	return e
}

// retryAfterHint parses a Retry-After header. Both delay-seconds and
// HTTP-date forms are accepted; an unparseable value yields zero.
func retryAfterHint(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
