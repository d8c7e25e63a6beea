package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fastraven/fastraven/pkg/health"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second

	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// App hosts the dispatch kernel behind an outer mux that also serves
// health probes and the CDN route space (static files). App is
// immutable after creation; all configuration happens in New.
type App struct {
	kernel        *Kernel
	mux           chi.Router
	logger        *slog.Logger
	healthConfig  *healthConfig
	staticRoutes  []staticRoute
	startupHooks  []func(context.Context) error
	shutdownHooks []func(context.Context) error
}

// staticRoute is a CDN-space mount point serving files from a
// directory.
type staticRoute struct {
	pattern string
	dir     string
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// AppOption configures an App.
type AppOption func(*App)

// WithLogger sets the app logger.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithHealth mounts liveness and readiness endpoints with the given
// named checks.
func WithHealth(checks health.Checks) AppOption {
	return func(a *App) {
		a.healthConfig = &healthConfig{
			checks:        checks,
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
	}
}

// WithStatic mounts a directory under a URL prefix (the CDN route
// space). Requests under the prefix never reach the kernel.
func WithStatic(pattern, dir string) AppOption {
	return func(a *App) {
		a.staticRoutes = append(a.staticRoutes, staticRoute{pattern: pattern, dir: dir})
	}
}

// WithStartupHook registers a function run before the server accepts
// traffic. A failing hook aborts startup.
func WithStartupHook(hook func(context.Context) error) AppOption {
	return func(a *App) {
		a.startupHooks = append(a.startupHooks, hook)
	}
}

// WithShutdownHook registers a function run during graceful shutdown
// (close pools, stop schedulers).
func WithShutdownHook(hook func(context.Context) error) AppOption {
	return func(a *App) {
		a.shutdownHooks = append(a.shutdownHooks, hook)
	}
}

// NewApp assembles the outer mux around a kernel.
func NewApp(kernel *Kernel, opts ...AppOption) *App {
	a := &App{
		kernel: kernel,
		mux:    chi.NewRouter(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// Handler returns the app's root http.Handler.
func (a *App) Handler() http.Handler {
	return a.mux
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context, addr string) error {
	return runServer(ctx, runtimeConfig{
		handler:         a.mux,
		address:         addr,
		logger:          a.logger,
		shutdownTimeout: defaultShutdownTimeout,
		startupHooks:    a.startupHooks,
		shutdownHooks:   a.shutdownHooks,
	})
}

func (a *App) setupRoutes() {
	if a.healthConfig != nil {
		a.mux.Get(a.healthConfig.livenessPath, health.Liveness())
		a.mux.Get(a.healthConfig.readinessPath, health.Readiness(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	for _, sr := range a.staticRoutes {
		prefix := sr.pattern
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(sr.dir)))
		a.mux.Mount(prefix, fs)
	}

	// Everything else flows through the dispatch kernel, including
	// its own not-found handling.
	a.mux.Mount("/", a.kernel)
}
