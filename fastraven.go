package fastraven

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fastraven/fastraven/internal"
	"github.com/fastraven/fastraven/pkg/cookie"
	"github.com/fastraven/fastraven/pkg/health"
	"github.com/fastraven/fastraven/pkg/logger"
	"github.com/fastraven/fastraven/pkg/ratelimit"
	"github.com/fastraven/fastraven/pkg/session"
)

// Type aliases - public API
type (
	// App hosts the kernel behind an HTTP server with health endpoints,
	// static mounts, and graceful shutdown.
	App = internal.App

	// AppOption configures the App.
	AppOption = internal.AppOption

	// Kernel dispatches requests: routing, rate limiting, filters,
	// authorization, handler invocation, and error mapping.
	Kernel = internal.Kernel

	// KernelOption configures the Kernel.
	KernelOption = internal.KernelOption

	// Router resolves requests to endpoints, either from an eager
	// endpoint table or from lazily loaded route files.
	Router = internal.Router

	// RouterOption configures the Router.
	RouterOption = internal.RouterOption

	// Endpoint binds a method and path to a named handler.
	Endpoint = internal.Endpoint

	// EndpointOption configures an Endpoint.
	EndpointOption = internal.EndpointOption

	// HandlerFunc is the signature for endpoint handlers.
	HandlerFunc = internal.HandlerFunc

	// FilterFunc inspects a request before dispatch.
	FilterFunc = internal.FilterFunc

	// Request is the framework's read-only view of an incoming request.
	Request = internal.Request

	// Response describes what to send back: JSON envelope, raw body,
	// or redirect.
	Response = internal.Response

	// Error is the framework error carrying a public message, an
	// internal detail, and an HTTP status code.
	Error = internal.Error

	// ErrorOption configures a framework error.
	ErrorOption = internal.ErrorOption

	// Gate manages session-backed authorization and CSRF validation.
	Gate = internal.Gate

	// GateOption configures the Gate.
	GateOption = internal.GateOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// HealthChecks maps dependency names to readiness check functions.
	HealthChecks = health.Checks

	// RateLimiter is a fixed-window limiter over a cache engine.
	RateLimiter = ratelimit.Limiter
)

// Constructors

// NewRouter creates a router from exactly one of WithEndpoints or
// WithRouteFiles.
//
// Example:
//
//	router, err := fastraven.NewRouter(fastraven.WithEndpoints(
//	    fastraven.NewAPIEndpoint("POST", "/sayHello", "sayHello"),
//	    fastraven.NewEndpoint("GET", "/dashboard", "dashboard", fastraven.Restricted()),
//	))
func NewRouter(opts ...RouterOption) (*Router, error) {
	return internal.NewRouter(opts...)
}

// NewKernel creates a dispatch kernel over a route table.
func NewKernel(router *Router, opts ...KernelOption) *Kernel {
	return internal.NewKernel(router, opts...)
}

// NewApp wraps a kernel in a runnable HTTP application.
//
// Example:
//
//	app := fastraven.NewApp(kernel,
//	    fastraven.WithLogger(log),
//	    fastraven.WithHealth(fastraven.HealthChecks{"postgres": dbCheck}),
//	)
//	err := app.Run(ctx, ":8080")
func NewApp(kernel *Kernel, opts ...AppOption) *App {
	return internal.NewApp(kernel, opts...)
}

// NewGate creates an authorization gate over a session store and a
// cookie manager.
func NewGate(store SessionStore, cookies *cookie.Manager, opts ...GateOption) *Gate {
	return internal.NewGate(store, cookies, opts...)
}

// NewEndpoint declares a view-space endpoint.
func NewEndpoint(method, path, handler string, opts ...EndpointOption) Endpoint {
	return internal.NewEndpoint(method, path, handler, opts...)
}

// NewAPIEndpoint declares an endpoint in the /api route space.
func NewAPIEndpoint(method, path, handler string, opts ...EndpointOption) Endpoint {
	return internal.NewAPIEndpoint(method, path, handler, opts...)
}

// NewCSRFToken generates a token for CSRF protection of mutating
// requests.
func NewCSRFToken() (string, error) {
	return internal.NewCSRFToken()
}

// Endpoint options

// Restricted marks an endpoint as requiring an authorized session.
func Restricted() EndpointOption { return internal.Restricted() }

// AnonymousOnly marks an endpoint as unreachable under an authorized
// session.
func AnonymousOnly() EndpointOption { return internal.AnonymousOnly() }

// WithTemplate names the view template an endpoint renders.
func WithTemplate(name string) EndpointOption { return internal.WithTemplate(name) }

// Router options

// WithEndpoints configures an eagerly registered endpoint table.
func WithEndpoints(endpoints ...Endpoint) RouterOption {
	return internal.WithEndpoints(endpoints...)
}

// WithRouteFiles configures lazy routing from path-prefix to YAML
// route file.
func WithRouteFiles(files map[string]string) RouterOption {
	return internal.WithRouteFiles(files)
}

// Kernel options

// WithGate sets the authorization gate.
func WithGate(gate *Gate) KernelOption { return internal.WithGate(gate) }

// WithRateLimiter enables per-client rate limiting.
func WithRateLimiter(limiter *RateLimiter) KernelOption {
	return internal.WithRateLimiter(limiter)
}

// WithAllowedOrigins sets the exact-match CORS allow-list.
func WithAllowedOrigins(origins ...string) KernelOption {
	return internal.WithAllowedOrigins(origins...)
}

// WithFilter registers a named pre-dispatch filter.
func WithFilter(name string, fn FilterFunc) KernelOption {
	return internal.WithFilter(name, fn)
}

// WithGlobalRestriction requires authorization on every route and
// redirects view denials to domainURL.
func WithGlobalRestriction(domainURL string) KernelOption {
	return internal.WithGlobalRestriction(domainURL)
}

// WithErrorPaths sets the view-space redirect targets for not-found
// and unauthorized outcomes.
func WithErrorPaths(notFound, unauthorized string) KernelOption {
	return internal.WithErrorPaths(notFound, unauthorized)
}

// WithKernelLogger sets the dispatch logger.
func WithKernelLogger(logger *slog.Logger) KernelOption {
	return internal.WithKernelLogger(logger)
}

// Gate options

// WithSessionTTL sets how long new sessions live.
func WithSessionTTL(ttl time.Duration) GateOption { return internal.WithSessionTTL(ttl) }

// ResponseWriterFrom returns the raw response writer and request for
// the dispatch in flight. Handlers that manage session cookies use it
// with the Gate.
func ResponseWriterFrom(ctx context.Context) (http.ResponseWriter, *http.Request) {
	return internal.ResponseWriterFrom(ctx)
}

// App options

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) AppOption { return internal.WithLogger(logger) }

// WithHealth enables liveness and readiness endpoints backed by the
// given dependency checks.
func WithHealth(checks HealthChecks) AppOption { return internal.WithHealth(checks) }

// WithStatic mounts a directory of static files under a URL pattern.
func WithStatic(pattern, dir string) AppOption { return internal.WithStatic(pattern, dir) }

// WithStartupHook runs fn before the server starts listening. A
// failing hook aborts startup.
func WithStartupHook(fn func(context.Context) error) AppOption {
	return internal.WithStartupHook(fn)
}

// WithShutdownHook runs fn during graceful shutdown.
func WithShutdownHook(fn func(context.Context) error) AppOption {
	return internal.WithShutdownHook(fn)
}

// Response constructors

// OK returns a success envelope carrying data.
func OK(data any) *Response { return internal.OK(data) }

// OKMessage returns a success envelope carrying a message.
func OKMessage(message string) *Response { return internal.OKMessage(message) }

// Fail returns an error envelope with the given status code.
func Fail(code int, message string) *Response { return internal.Fail(code, message) }

// HTML returns a raw HTML response.
func HTML(code int, body string) *Response { return internal.HTML(code, body) }

// Text returns a plain-text response.
func Text(code int, body string) *Response { return internal.Text(code, body) }

// Redirect returns a redirect response. Non-3xx codes fall back
// to 302.
func Redirect(code int, location string) *Response {
	return internal.Redirect(code, location)
}

// Error constructors

// ErrNotFound reports a missing route or resource (404).
func ErrNotFound(opts ...ErrorOption) *Error { return internal.ErrNotFound(opts...) }

// ErrNotAuthorized reports a missing or invalid session (401).
func ErrNotAuthorized(opts ...ErrorOption) *Error { return internal.ErrNotAuthorized(opts...) }

// ErrAlreadyAuthorized reports an authorized session hitting an
// anonymous-only route (403).
func ErrAlreadyAuthorized(opts ...ErrorOption) *Error {
	return internal.ErrAlreadyAuthorized(opts...)
}

// ErrBadImplementation reports a framework misuse (500).
func ErrBadImplementation(opts ...ErrorOption) *Error {
	return internal.ErrBadImplementation(opts...)
}

// ErrRateLimitExceeded reports a throttled client (429).
func ErrRateLimitExceeded(retryAfter time.Duration, opts ...ErrorOption) *Error {
	return internal.ErrRateLimitExceeded(retryAfter, opts...)
}

// ErrFilterDenied reports a request rejected by a named filter (400).
func ErrFilterDenied(filter string, opts ...ErrorOption) *Error {
	return internal.ErrFilterDenied(filter, opts...)
}

// WithInternal attaches a log-only detail message to an error.
func WithInternal(msg string) ErrorOption { return internal.WithInternal(msg) }
