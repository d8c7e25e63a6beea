package internal

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderPolicy(t *testing.T) {
	t.Parallel()

	t.Run("fixed security set", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		(&HeaderPolicy{}).Apply(rec, "", false, true)

		h := rec.Header()
		require.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		require.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
		require.Equal(t, "frame-ancestors 'none'", h.Get("Content-Security-Policy"))
		require.Equal(t, "DENY", h.Get("X-Frame-Options"))
		require.NotEmpty(t, h.Get("Access-Control-Allow-Methods"))
		require.NotEmpty(t, h.Get("Access-Control-Allow-Headers"))
	})

	t.Run("hsts only over tls", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		(&HeaderPolicy{}).Apply(rec, "", false, true)
		require.Empty(t, rec.Header().Get("Strict-Transport-Security"))

		rec = httptest.NewRecorder()
		(&HeaderPolicy{}).Apply(rec, "", true, true)
		require.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
	})

	t.Run("origin echoed only on exact match", func(t *testing.T) {
		t.Parallel()

		p := &HeaderPolicy{AllowedOrigins: []string{"https://app.example.com"}}

		rec := httptest.NewRecorder()
		p.Apply(rec, "https://app.example.com", false, true)
		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Contains(t, rec.Header().Values("Vary"), "Origin")

		rec = httptest.NewRecorder()
		p.Apply(rec, "https://evil.example.com", false, true)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		// Subdomains are not wildcarded.
		rec = httptest.NewRecorder()
		p.Apply(rec, "https://sub.app.example.com", false, true)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("cache control differs per surface", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		(&HeaderPolicy{}).Apply(rec, "", false, true)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		rec = httptest.NewRecorder()
		(&HeaderPolicy{}).Apply(rec, "", false, false)
		require.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))
	})
}
