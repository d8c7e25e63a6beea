package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// HandlerFunc is the signature for route handlers. A handler receives
// the parsed request and must return a Response; returning nil with a
// nil error is a contract violation the dispatcher surfaces as a
// BadImplementation error.
type HandlerFunc func(ctx context.Context, r *Request) (*Response, error)

// apiPrefix marks the API route space. Endpoints registered as API
// endpoints get their routing key prefixed with it.
const apiPrefix = "/api"

// Endpoint is an immutable route descriptor binding a routing key to
// a named handler.
type Endpoint struct {
	Key           string // routing key: normalized path + "#" + METHOD
	Handler       string // handler name resolved through the router registry
	Template      string // optional view-template override
	Restricted    bool   // requires an authorized session
	AnonymousOnly bool   // rejects authorized sessions
}

// EndpointOption configures an Endpoint at construction.
type EndpointOption func(*Endpoint)

// Restricted marks the endpoint as requiring authorization.
func Restricted() EndpointOption {
	return func(e *Endpoint) {
		e.Restricted = true
	}
}

// AnonymousOnly marks the endpoint as rejecting authorized sessions
// (login and registration pages).
func AnonymousOnly() EndpointOption {
	return func(e *Endpoint) {
		e.AnonymousOnly = true
	}
}

// WithTemplate sets a view-template override.
func WithTemplate(name string) EndpointOption {
	return func(e *Endpoint) {
		e.Template = name
	}
}

// NewEndpoint creates a view-space endpoint.
func NewEndpoint(method, path, handler string, opts ...EndpointOption) Endpoint {
	e := Endpoint{
		Key:     routingKey(path, method),
		Handler: handler,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewAPIEndpoint creates an API-space endpoint. The path is prefixed
// with /api/ unless it already carries it.
func NewAPIEndpoint(method, path, handler string, opts ...EndpointOption) Endpoint {
	if !strings.HasPrefix(path, apiPrefix+"/") && path != apiPrefix {
		path = apiPrefix + path
	}
	return NewEndpoint(method, path, handler, opts...)
}

// IsAPI reports whether the endpoint lives in the API route space.
func (e Endpoint) IsAPI() bool {
	return strings.HasPrefix(e.Key, apiPrefix+"/") || strings.HasPrefix(e.Key, apiPrefix+"#")
}

func routingKey(path, method string) string {
	return normalizePath(path) + "#" + strings.ToUpper(method)
}

// ErrRouterConfig reports an invalid router construction.
var ErrRouterConfig = errors.New("router: exactly one of endpoints or route files must be configured")

// Router matches a request's routing key against a declarative route
// table. A router is either eager (the full Endpoint list materialized
// at construction) or lazy (a path-prefix association table whose
// route files load on first matching request); exactly one of the two
// representations is populated per instance.
type Router struct {
	mu              sync.Mutex
	endpoints       []Endpoint
	endpointsLoaded bool              // true once the eager list is authoritative
	routeFiles      map[string]string // path prefix -> route file
	filesLoaded     map[string]bool
	handlers        map[string]HandlerFunc
	logger          *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithEndpoints sets the eager endpoint list.
func WithEndpoints(endpoints ...Endpoint) RouterOption {
	return func(r *Router) {
		r.endpoints = append(r.endpoints, endpoints...)
	}
}

// WithRouteFiles sets the lazy path-prefix association table. Keys
// are path prefixes ("/admin"), values are YAML route files loaded on
// the first request matching the prefix.
func WithRouteFiles(files map[string]string) RouterOption {
	return func(r *Router) {
		r.routeFiles = files
	}
}

// WithRouterLogger sets the logger for route loading diagnostics.
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRouter creates a Router in either eager or lazy mode.
func NewRouter(opts ...RouterOption) (*Router, error) {
	r := &Router{
		handlers:    make(map[string]HandlerFunc),
		filesLoaded: make(map[string]bool),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	eager := len(r.endpoints) > 0
	lazy := len(r.routeFiles) > 0
	if eager == lazy {
		return nil, ErrRouterConfig
	}
	r.endpointsLoaded = eager
	return r, nil
}

// Handle registers a named handler that endpoints reference.
func (r *Router) Handle(name string, h HandlerFunc) {
	r.handlers[name] = h
}

// Handler resolves a handler by name.
func (r *Router) Handler(name string) (HandlerFunc, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Route matches the request against the endpoint table. In lazy mode
// the best-matching path prefix's route file is loaded first. Returns
// ErrNotFound when nothing matches; a missing route file for one
// prefix logs and falls through to no-match rather than failing hard.
func (r *Router) Route(req *Request) (*Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.endpointsLoaded || len(r.routeFiles) > 0 {
		r.loadForPath(req.Path())
	}

	key := req.RoutingKey()
	for i := range r.endpoints {
		if r.endpoints[i].Key == key {
			// First exact match wins; duplicate keys are a
			// configuration bug, not a runtime error.
			return &r.endpoints[i], nil
		}
	}
	return nil, ErrNotFound(WithInternal("no route for key " + key))
}

// loadForPath resolves the longest prefix matching dirname(path) and
// materializes its route file. Caller holds r.mu.
func (r *Router) loadForPath(path string) {
	dir := dirname(path)

	best := ""
	for prefix := range r.routeFiles {
		if prefixMatches(dir, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" || r.filesLoaded[best] {
		return
	}
	r.filesLoaded[best] = true

	file := r.routeFiles[best]
	endpoints, err := loadRouteFile(file)
	if err != nil {
		r.logger.Warn("route file unavailable",
			slog.String("prefix", best),
			slog.String("file", file),
			slog.String("error", err.Error()),
		)
		return
	}
	r.endpoints = append(r.endpoints, endpoints...)
}

// routeFile is the YAML shape of a lazy route file.
type routeFile struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	Method        string `yaml:"method"`
	Path          string `yaml:"path"`
	Handler       string `yaml:"handler"`
	Template      string `yaml:"template"`
	API           bool   `yaml:"api"`
	Restricted    bool   `yaml:"restricted"`
	AnonymousOnly bool   `yaml:"anonymous_only"`
}

func loadRouteFile(path string) ([]Endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf routeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse route file: %w", err)
	}

	endpoints := make([]Endpoint, 0, len(rf.Routes))
	for _, entry := range rf.Routes {
		var opts []EndpointOption
		if entry.Restricted {
			opts = append(opts, Restricted())
		}
		if entry.AnonymousOnly {
			opts = append(opts, AnonymousOnly())
		}
		if entry.Template != "" {
			opts = append(opts, WithTemplate(entry.Template))
		}
		if entry.API {
			endpoints = append(endpoints, NewAPIEndpoint(entry.Method, entry.Path, entry.Handler, opts...))
		} else {
			endpoints = append(endpoints, NewEndpoint(entry.Method, entry.Path, entry.Handler, opts...))
		}
	}
	return endpoints, nil
}

// dirname returns the parent directory of a normalized path.
func dirname(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/"
	}
	return path[:i]
}

func prefixMatches(dir, prefix string) bool {
	if prefix == "/" {
		return true
	}
	return dir == prefix || strings.HasPrefix(dir, prefix+"/")
}
