package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseJSONEnvelope(t *testing.T) {
	t.Parallel()

	t.Run("success with data", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, OK(map[string]string{"greeting": "hello"}).Write(rec))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "OK", body["status"])
		require.Equal(t, map[string]any{"greeting": "hello"}, body["data"])
		require.NotContains(t, body, "message")
	})

	t.Run("success with message only", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, OKMessage("created").Write(rec))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "OK", body["status"])
		require.Equal(t, "created", body["message"])
		require.NotContains(t, body, "data")
	})

	t.Run("error envelope", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, Fail(http.StatusNotFound, "resource not found").Write(rec))

		require.Equal(t, http.StatusNotFound, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "ERROR", body["status"])
		require.Equal(t, "resource not found", body["message"])
	})
}

func TestResponseBodies(t *testing.T) {
	t.Parallel()

	t.Run("html body verbatim", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, HTML(http.StatusOK, "<h1>hi</h1>").Write(rec))

		require.Equal(t, ContentTypeHTML, rec.Header().Get("Content-Type"))
		require.Equal(t, "<h1>hi</h1>", rec.Body.String())
	})

	t.Run("text body verbatim", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, Text(http.StatusOK, "pong").Write(rec))

		require.Equal(t, ContentTypeText, rec.Header().Get("Content-Type"))
		require.Equal(t, "pong", rec.Body.String())
	})
}

func TestResponseRedirect(t *testing.T) {
	t.Parallel()

	t.Run("sets location", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		require.NoError(t, Redirect(http.StatusFound, "/login").Write(rec))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
		require.Empty(t, rec.Body.String())
	})

	t.Run("non-3xx code falls back to 302", func(t *testing.T) {
		t.Parallel()

		resp := Redirect(http.StatusOK, "/login")
		require.Equal(t, http.StatusFound, resp.Code)
	})
}
