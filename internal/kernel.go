package internal

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fastraven/fastraven/pkg/ratelimit"
)

// CSRFField is the body field carrying the CSRF token on mutating
// requests.
const CSRFField = "csrf_token"

// DispatchState tracks a request through the kernel's lifecycle.
type DispatchState int

const (
	StateReceived DispatchState = iota
	StateRouted
	StateAuthorized
	StateRejected
	StateDispatched
	StateResponded
)

func (s DispatchState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateRouted:
		return "routed"
	case StateAuthorized:
		return "authorized"
	case StateRejected:
		return "rejected"
	case StateDispatched:
		return "dispatched"
	case StateResponded:
		return "responded"
	}
	return "unknown"
}

// FilterFunc inspects a request before dispatch. Returning an error
// (typically ErrFilterDenied) rejects the request.
type FilterFunc func(ctx context.Context, r *Request) error

type namedFilter struct {
	name string
	fn   FilterFunc
}

// Kernel orchestrates one request lifecycle: route lookup, rate
// limiting, filters, the authorization/CSRF gate, handler invocation,
// error-to-Response mapping, and header policy application.
//
// Framework errors are caught exactly once at this boundary and
// converted to a Response carrying only the public message. Anything
// else a handler returns is re-raised as a panic so the bug stays
// visible instead of being masked as a generic 500; net/http logs it
// and aborts the request.
type Kernel struct {
	router  *Router
	gate    *Gate
	limiter *ratelimit.Limiter
	headers HeaderPolicy
	logger  *slog.Logger
	filters []namedFilter

	// globalRestricted requires authorization for every route; a
	// denial at this level redirects to another host rather than the
	// login path.
	globalRestricted bool

	notFoundPath     string
	unauthorizedPath string
	domainURL        string // redirect target for domain-level denials
}

// KernelOption configures a Kernel.
type KernelOption func(*Kernel)

// WithGate sets the authorization gate. Without one, restricted
// routes always reject.
func WithGate(gate *Gate) KernelOption {
	return func(k *Kernel) {
		k.gate = gate
	}
}

// WithRateLimiter enables per-client rate limiting.
func WithRateLimiter(limiter *ratelimit.Limiter) KernelOption {
	return func(k *Kernel) {
		k.limiter = limiter
	}
}

// WithAllowedOrigins sets the exact-match CORS allow-list.
func WithAllowedOrigins(origins ...string) KernelOption {
	return func(k *Kernel) {
		k.headers.AllowedOrigins = origins
	}
}

// WithFilter registers a named pre-dispatch filter. Filters run in
// registration order after routing and before authorization.
func WithFilter(name string, fn FilterFunc) KernelOption {
	return func(k *Kernel) {
		k.filters = append(k.filters, namedFilter{name: name, fn: fn})
	}
}

// WithGlobalRestriction requires authorization on every route and
// redirects view denials to domainURL.
func WithGlobalRestriction(domainURL string) KernelOption {
	return func(k *Kernel) {
		k.globalRestricted = true
		k.domainURL = domainURL
	}
}

// WithErrorPaths sets the view-space redirect targets for not-found
// and unauthorized outcomes.
func WithErrorPaths(notFound, unauthorized string) KernelOption {
	return func(k *Kernel) {
		k.notFoundPath = notFound
		k.unauthorizedPath = unauthorized
	}
}

// WithKernelLogger sets the dispatch logger.
func WithKernelLogger(logger *slog.Logger) KernelOption {
	return func(k *Kernel) {
		if logger != nil {
			k.logger = logger
		}
	}
}

// NewKernel creates a dispatch kernel over a route table.
func NewKernel(router *Router, opts ...KernelOption) *Kernel {
	k := &Kernel{
		router:           router,
		logger:           slog.New(slog.DiscardHandler),
		notFoundPath:     "/not-found",
		unauthorizedPath: "/login",
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// ServeHTTP handles one request through the dispatch state machine.
func (k *Kernel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := withHTTP(r.Context(), w, r)
	req := NewRequest(r) // StateReceived

	resp, api, state := k.dispatch(ctx, r, req)

	k.headers.Apply(w, r.Header.Get("Origin"), req.TLS(), api)
	if resp.Code == http.StatusTooManyRequests {
		if fe := respRetryAfter(resp); fe > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(fe))
		}
	}

	if err := resp.Write(w); err != nil {
		k.logger.Error("response write failed",
			slog.String("request_id", req.ID()),
			slog.String("error", err.Error()),
		)
	}

	k.logger.Debug("request completed",
		slog.String("request_id", req.ID()),
		slog.String("key", req.RoutingKey()),
		slog.Int("status", resp.Code),
		slog.String("state", state.String()),
	)
}

// dispatch runs the request through routing, filters, the auth gate,
// and the handler, returning the Response to emit, whether the
// request targeted the API space, and the terminal state.
func (k *Kernel) dispatch(ctx context.Context, r *http.Request, req *Request) (*Response, bool, DispatchState) {
	api := strings.HasPrefix(req.Path(), apiPrefix+"/")

	ep, err := k.router.Route(req)
	if err != nil {
		return k.errorResponse(req, api, AsError(err)), api, StateRejected
	}
	api = ep.IsAPI() // StateRouted

	if k.limiter != nil {
		if res := k.limiter.Allow(ctx, req.ClientAddr()); !res.Allowed {
			return k.errorResponse(req, api, ErrRateLimitExceeded(res.RetryAfter)), api, StateRejected
		}
	}

	for _, f := range k.filters {
		if err := f.fn(ctx, req); err != nil {
			fe := AsError(err)
			if fe == nil {
				fe = ErrFilterDenied(f.name, WithInternal(err.Error()))
			}
			return k.errorResponse(req, api, fe), api, StateRejected
		}
	}

	if fe := k.authorize(ctx, r, req, ep); fe != nil {
		return k.errorResponse(req, api, fe), api, StateRejected
	}
	// StateAuthorized

	handler, ok := k.router.Handler(ep.Handler)
	if !ok {
		fe := ErrBadImplementation(WithInternal("no handler registered for " + ep.Handler))
		return k.errorResponse(req, api, fe), api, StateRejected
	}

	resp, err := handler(ctx, req) // StateDispatched
	if err != nil {
		fe := AsError(err)
		if fe == nil {
			// Not part of the framework's error family: let it
			// crash loudly, it is a bug in the handler.
			panic(err)
		}
		return k.errorResponse(req, api, fe), api, StateRejected
	}
	if resp == nil {
		fe := ErrBadImplementation(WithInternal("handler " + ep.Handler + " returned no response"))
		return k.errorResponse(req, api, fe), api, StateRejected
	}

	return resp, api, StateResponded
}

// authorize applies the endpoint's access policy: session presence
// for restricted routes, anonymous-only exclusion, and CSRF token
// equality on mutating methods under an authorized session.
func (k *Kernel) authorize(ctx context.Context, r *http.Request, req *Request, ep *Endpoint) *Error {
	authorized := false
	if k.gate != nil {
		authorized = k.gate.ValidateSessionPresence(ctx, r)
	}

	if ep.AnonymousOnly && authorized {
		return ErrAlreadyAuthorized(WithInternal("authorized session on anonymous-only route " + ep.Key))
	}

	if (ep.Restricted || k.globalRestricted) && !ep.AnonymousOnly {
		if !authorized {
			opts := []ErrorOption{WithInternal("no authorized session for " + ep.Key)}
			if k.globalRestricted && !ep.Restricted {
				opts = append(opts, WithDomainLevel())
			}
			return ErrNotAuthorized(opts...)
		}
	}

	if authorized && req.Mutating() {
		sess, err := k.gate.Load(ctx, r)
		if err != nil || sess == nil || !k.gate.ValidateCSRF(sess.CSRFToken, req.Post(CSRFField)) {
			k.logger.Warn("csrf token mismatch",
				slog.String("request_id", req.ID()),
				slog.String("key", ep.Key),
				slog.String("client", req.ClientAddr()),
			)
			return ErrNotAuthorized(WithInternal("csrf token mismatch on " + ep.Key))
		}
	}

	return nil
}

// errorResponse converts a framework error into the Response for the
// request's surface. API errors return the JSON envelope with the
// mapped status code; view errors redirect. Internal detail is
// logged here and never leaves the process.
func (k *Kernel) errorResponse(req *Request, api bool, fe *Error) *Response {
	k.logger.Error("request rejected",
		slog.String("request_id", req.ID()),
		slog.String("key", req.RoutingKey()),
		slog.Int("kind", int(fe.Kind)),
		slog.Int("code", fe.Code),
		slog.String("detail", fe.Error()),
	)

	if api {
		resp := Fail(fe.Code, fe.Public)
		resp.Data = errorData(fe)
		return resp
	}

	switch fe.Kind {
	case KindNotFound:
		return Redirect(http.StatusFound, k.notFoundPath)
	case KindNotAuthorized:
		if fe.DomainLevel && k.domainURL != "" {
			return Redirect(http.StatusFound, k.domainURL)
		}
		return Redirect(http.StatusFound, k.unauthorizedPath)
	case KindAlreadyAuthorized:
		return Redirect(http.StatusFound, "/")
	default:
		return Fail(fe.Code, fe.Public)
	}
}

// errorData builds the machine-readable part of an API error
// envelope.
func errorData(fe *Error) any {
	data := map[string]any{}
	if fe.RetryAfter > 0 {
		data["retry_after"] = int(fe.RetryAfter.Seconds())
	}
	if fe.Filter != "" {
		data["filter"] = fe.Filter
	}
	if len(data) == 0 {
		return nil
	}
	return data
}

// respRetryAfter recovers the retry-after seconds from an error
// response's data payload.
func respRetryAfter(resp *Response) int {
	data, ok := resp.Data.(map[string]any)
	if !ok {
		return 0
	}
	secs, ok := data["retry_after"].(int)
	if !ok {
		return 0
	}
	return secs
}
