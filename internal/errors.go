package internal

import (
	"net/http"
	"time"
)

// Kind identifies a framework error category. Every error the
// dispatcher converts into a Response carries exactly one kind.
type Kind int

const (
	// KindNotFound means no route matched the request.
	KindNotFound Kind = iota
	// KindNotAuthorized means a missing or invalid session or CSRF token.
	KindNotAuthorized
	// KindAlreadyAuthorized means an authenticated user hit an
	// exclusively-anonymous resource.
	KindAlreadyAuthorized
	// KindBadImplementation means a handler broke its contract.
	KindBadImplementation
	// KindRateLimitExceeded means the request exceeded a rate limit.
	KindRateLimitExceeded
	// KindFilterDenied means a named filter rejected the request.
	KindFilterDenied
)

// Error is the framework error type. The dispatcher catches it at the
// outer boundary and converts it to a Response using only the public
// message and status code; the internal message is logged, never sent
// to the client.
type Error struct {
	Kind     Kind
	Code     int    // HTTP status code
	Public   string // user-facing message
	Internal string // logged detail, never exposed

	// DomainLevel distinguishes whole-subdomain denial (redirect to a
	// different host) from single-resource denial (redirect to the
	// login path). Only meaningful for KindNotAuthorized.
	DomainLevel bool

	// RetryAfter is the remaining wait time for rate limit errors.
	RetryAfter time.Duration

	// Filter names the filter that denied the request.
	Filter string
}

func (e *Error) Error() string {
	if e.Internal != "" {
		return e.Internal
	}
	return e.Public
}

// ErrorOption configures an Error.
type ErrorOption func(*Error)

// WithInternal attaches a log-only detail message.
func WithInternal(msg string) ErrorOption {
	return func(e *Error) {
		e.Internal = msg
	}
}

// WithDomainLevel marks an authorization failure as subdomain-wide.
func WithDomainLevel() ErrorOption {
	return func(e *Error) {
		e.DomainLevel = true
	}
}

// WithCode overrides the default status code for the kind.
func WithCode(code int) ErrorOption {
	return func(e *Error) {
		e.Code = code
	}
}

func newError(kind Kind, code int, public string, opts ...ErrorOption) *Error {
	e := &Error{Kind: kind, Code: code, Public: public}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ErrNotFound reports that no route matched.
func ErrNotFound(opts ...ErrorOption) *Error {
	return newError(KindNotFound, http.StatusNotFound, "resource not found", opts...)
}

// ErrNotAuthorized reports a missing or invalid session or CSRF token.
func ErrNotAuthorized(opts ...ErrorOption) *Error {
	return newError(KindNotAuthorized, http.StatusUnauthorized, "not authorized", opts...)
}

// ErrAlreadyAuthorized reports an authenticated user hitting an
// exclusively-anonymous resource.
func ErrAlreadyAuthorized(opts ...ErrorOption) *Error {
	return newError(KindAlreadyAuthorized, http.StatusForbidden, "already authorized", opts...)
}

// ErrBadImplementation reports a handler contract violation.
func ErrBadImplementation(opts ...ErrorOption) *Error {
	return newError(KindBadImplementation, http.StatusInternalServerError, "internal server error", opts...)
}

// ErrRateLimitExceeded reports an exhausted rate limit with the wait
// time until the window resets.
func ErrRateLimitExceeded(retryAfter time.Duration, opts ...ErrorOption) *Error {
	e := newError(KindRateLimitExceeded, http.StatusTooManyRequests, "rate limit exceeded", opts...)
	e.RetryAfter = retryAfter
	return e
}

// ErrFilterDenied reports rejection by a named filter. The status
// defaults to 400; override with WithCode.
func ErrFilterDenied(filter string, opts ...ErrorOption) *Error {
	e := newError(KindFilterDenied, http.StatusBadRequest, "request rejected", opts...)
	e.Filter = filter
	return e
}

// AsError extracts the framework Error from err, or nil when err is
// outside the framework's error family.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*Error); ok {
		return fe
	}
	return nil
}
