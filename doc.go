// Package fastraven is a small routing and dispatch framework with two
// route spaces (API endpoints returning a JSON envelope, view endpoints
// returning markup or redirects), a session-backed authorization gate
// with CSRF protection, and a multi-backend TTL cache.
//
// # Quick Start
//
// Declare endpoints, register handlers by name, and run the app:
//
//	router, err := fastraven.NewRouter(fastraven.WithEndpoints(
//	    fastraven.NewAPIEndpoint("POST", "/sayHello", "sayHello"),
//	    fastraven.NewEndpoint("GET", "/dashboard", "dashboard", fastraven.Restricted()),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	router.Handle("sayHello", func(ctx context.Context, r *fastraven.Request) (*fastraven.Response, error) {
//	    return fastraven.OK(map[string]string{"greeting": "hello " + r.Post("key")}), nil
//	})
//
//	kernel := fastraven.NewKernel(router, fastraven.WithGate(gate))
//	app := fastraven.NewApp(kernel, fastraven.WithLogger(log))
//	err = app.Run(ctx, ":8080")
//
// # Route spaces
//
// Paths under /api belong to the API space: errors come back as the
// JSON envelope {"status","data","message"} with the mapped status
// code. Everything else is the view space: not-found and authorization
// failures redirect instead.
//
// # Errors
//
// Handlers return framework errors from the Err* constructors. Each
// carries a public message for the client and an optional internal
// detail that is only logged. Any other error a handler returns is
// treated as a bug and escalates as a panic rather than being masked
// as a generic 500.
//
// # Lazy routing
//
// Instead of an eager endpoint table, the router can map path prefixes
// to YAML route files loaded on first match:
//
//	router, err := fastraven.NewRouter(fastraven.WithRouteFiles(map[string]string{
//	    "/admin": "routes/admin.yml",
//	    "/":      "routes/root.yml",
//	}))
//
// # Sessions and CSRF
//
// The Gate authorizes requests from a cookie-carried session ID. A
// session is authorized only when its user ID, CSRF token, and data
// are all set. Mutating requests under an authorized session must
// carry the session's CSRF token in the csrf_token body field.
package fastraven
