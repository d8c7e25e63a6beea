package internal

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven/pkg/sanitizer"
)

func TestRoutingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		target string
		want   string
	}{
		{"simple path", "GET", "/a", "/a#GET"},
		{"api path", "POST", "/api/sayHello", "/api/sayHello#POST"},
		{"query stripped", "GET", "/users?page=2", "/users#GET"},
		{"trailing slash trimmed", "GET", "/users/", "/users#GET"},
		{"root stays root", "GET", "/", "/#GET"},
		{"percent decoded", "GET", "/caf%C3%A9", "/café#GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := NewRequest(httptest.NewRequest(tt.method, tt.target, nil))
			require.Equal(t, tt.want, req.RoutingKey())
		})
	}
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	first := NewRequest(httptest.NewRequest("GET", "/", nil))
	second := NewRequest(httptest.NewRequest("GET", "/", nil))

	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), first.ID())
	require.NotEqual(t, first.ID(), second.ID())
}

func TestJSONBody(t *testing.T) {
	t.Parallel()

	t.Run("named fields readable", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/api/sayHello", strings.NewReader(`{"key":"hello","count":3}`))
		r.Header.Set("Content-Type", "application/json")
		req := NewRequest(r)

		require.Equal(t, "hello", req.Post("key"))

		raw, ok := req.PostRaw("count")
		require.True(t, ok)
		require.Equal(t, float64(3), raw)
	})

	t.Run("malformed body yields empty fields", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/x", strings.NewReader(`{broken`))
		r.Header.Set("Content-Type", "application/json")
		req := NewRequest(r)

		require.Empty(t, req.Post("key"))
	})

	t.Run("sanitization happens on read", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("POST", "/x", strings.NewReader(`{"name":"  <b>bold</b>  "}`))
		r.Header.Set("Content-Type", "application/json")
		req := NewRequest(r)

		require.Equal(t, "<b>bold</b>", req.Post("name"))
		require.Equal(t, "bold", req.PostLevel("name", sanitizer.Strip))
		require.Equal(t, "  <b>bold</b>  ", req.PostLevel("name", sanitizer.Raw))
	})
}

func TestQueryParams(t *testing.T) {
	t.Parallel()

	req := NewRequest(httptest.NewRequest("GET", "/search?q=%20golang%20&page=2", nil))

	require.Equal(t, "golang", req.Query("q"))
	require.Equal(t, " golang ", req.QueryLevel("q", sanitizer.Raw))
	require.Equal(t, "2", req.Query("page"))
	require.Empty(t, req.Query("missing"))
}

func TestMultipartFiles(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "avatar"))
	fw, err := mw.CreateFormFile("upload", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest("POST", "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	req := NewRequest(r)

	require.Equal(t, "avatar", req.Post("title"))
	require.Len(t, req.Files(), 1)
	require.Equal(t, "avatar.png", req.Files()[0].Filename)
}

func TestMutating(t *testing.T) {
	t.Parallel()

	for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
		require.True(t, NewRequest(httptest.NewRequest(method, "/", nil)).Mutating(), method)
	}
	for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
		require.False(t, NewRequest(httptest.NewRequest(method, "/", nil)).Mutating(), method)
	}
}

func TestClientAddr(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:54321"
	require.Equal(t, "203.0.113.7", NewRequest(r).ClientAddr())
}
