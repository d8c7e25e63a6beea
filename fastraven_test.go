package fastraven_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven"
	"github.com/fastraven/fastraven/pkg/cookie"
	"github.com/fastraven/fastraven/pkg/session"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	gate := fastraven.NewGate(session.NewMemoryStore(), cookie.New(),
		fastraven.WithSessionTTL(time.Hour))

	router, err := fastraven.NewRouter(fastraven.WithEndpoints(
		fastraven.NewAPIEndpoint("POST", "/sayHello", "sayHello"),
		fastraven.NewEndpoint("POST", "/login", "login"),
		fastraven.NewEndpoint("GET", "/dashboard", "dashboard", fastraven.Restricted()),
	))
	require.NoError(t, err)

	router.Handle("sayHello", func(_ context.Context, r *fastraven.Request) (*fastraven.Response, error) {
		return fastraven.OK(map[string]string{"greeting": "hello " + r.Post("key")}), nil
	})
	router.Handle("dashboard", func(context.Context, *fastraven.Request) (*fastraven.Response, error) {
		return fastraven.HTML(http.StatusOK, "<h1>Dashboard</h1>"), nil
	})
	router.Handle("login", func(ctx context.Context, r *fastraven.Request) (*fastraven.Response, error) {
		if r.Post("password") != "secret" {
			return nil, fastraven.ErrNotAuthorized()
		}
		csrf, err := fastraven.NewCSRFToken()
		if err != nil {
			return nil, fastraven.ErrBadImplementation(fastraven.WithInternal(err.Error()))
		}
		w, httpReq := fastraven.ResponseWriterFrom(ctx)
		if _, err := gate.CreateAuthorizedSession(ctx, w, httpReq, r.Post("username"), map[string]any{}, csrf); err != nil {
			return nil, fastraven.ErrBadImplementation(fastraven.WithInternal(err.Error()))
		}
		return fastraven.Redirect(http.StatusFound, "/dashboard"), nil
	})

	kernel := fastraven.NewKernel(router,
		fastraven.WithGate(gate),
		fastraven.WithErrorPaths("/not-found", "/login"),
	)

	return fastraven.NewApp(kernel, fastraven.WithHealth(fastraven.HealthChecks{})).Handler()
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("public api endpoint responds with envelope", func(t *testing.T) {
		t.Parallel()
		h := newTestApp(t)

		r := httptest.NewRequest("POST", "/api/sayHello", strings.NewReader(`{"key":"hello"}`))
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "OK", body["status"])
		require.Equal(t, map[string]any{"greeting": "hello hello"}, body["data"])
	})

	t.Run("login unlocks the restricted dashboard", func(t *testing.T) {
		t.Parallel()
		h := newTestApp(t)

		// Anonymous access redirects to the login page.
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard", nil))
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))

		loginReq := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"username":"alice","password":"secret"}`))
		loginReq.Header.Set("Content-Type", "application/json")
		loginRec := httptest.NewRecorder()
		h.ServeHTTP(loginRec, loginReq)
		require.Equal(t, http.StatusFound, loginRec.Code)
		require.Equal(t, "/dashboard", loginRec.Header().Get("Location"))

		r := httptest.NewRequest("GET", "/dashboard", nil)
		for _, c := range loginRec.Result().Cookies() {
			r.AddCookie(c)
		}
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Dashboard")
	})

	t.Run("bad credentials stay on login", func(t *testing.T) {
		t.Parallel()
		h := newTestApp(t)

		r := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"username":"alice","password":"wrong"}`))
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("health endpoints are mounted", func(t *testing.T) {
		t.Parallel()
		h := newTestApp(t)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/health/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/health/ready", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
