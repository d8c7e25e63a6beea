package internal

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/fastraven/fastraven/pkg/sanitizer"
)

const maxMultipartMemory = 32 << 20 // 32MB

// Request is an immutable view of one incoming HTTP request. Fields
// are parsed once at construction; accessors sanitize on read, never
// on store, so the raw values stay available at stricter or looser
// levels.
type Request struct {
	id         string // fixed-width hex correlation ID
	method     string
	rawPath    string
	path       string // normalized: percent-decoded, query-stripped
	query      url.Values
	body       map[string]any
	files      []*multipart.FileHeader
	clientAddr string
	tls        bool
}

// NewRequest parses an incoming HTTP request into an immutable value
// object. JSON bodies are decoded into named fields; multipart bodies
// yield form fields and uploaded file descriptors. Malformed bodies
// leave the field set empty rather than failing the request.
func NewRequest(r *http.Request) *Request {
	req := &Request{
		id:         newCorrelationID(),
		method:     r.Method,
		rawPath:    r.URL.RequestURI(),
		path:       normalizePath(r.URL.Path),
		query:      r.URL.Query(),
		clientAddr: clientAddr(r),
		tls:        r.TLS != nil,
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json":
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err == nil {
			req.body = fields
		}
	case strings.HasPrefix(mediaType, "multipart/"):
		if err := r.ParseMultipartForm(maxMultipartMemory); err == nil {
			req.body = make(map[string]any, len(r.MultipartForm.Value))
			for key, vals := range r.MultipartForm.Value {
				if len(vals) > 0 {
					req.body[key] = vals[0]
				}
			}
			for _, headers := range r.MultipartForm.File {
				req.files = append(req.files, headers...)
			}
		}
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err == nil {
			req.body = make(map[string]any, len(r.PostForm))
			for key, vals := range r.PostForm {
				if len(vals) > 0 {
					req.body[key] = vals[0]
				}
			}
		}
	}

	return req
}

// ID returns the request's correlation ID.
func (r *Request) ID() string { return r.id }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// RawPath returns the path as received, query string included.
func (r *Request) RawPath() string { return r.rawPath }

// Path returns the normalized path.
func (r *Request) Path() string { return r.path }

// ClientAddr returns the remote client address without the port.
func (r *Request) ClientAddr() string { return r.clientAddr }

// TLS reports whether the request arrived over a TLS connection.
func (r *Request) TLS() bool { return r.tls }

// RoutingKey returns the router lookup key: normalized path, "#",
// method. The format is exact and stable; it is the sole key the
// router matches against.
func (r *Request) RoutingKey() string {
	return r.path + "#" + r.method
}

// Query returns a query parameter trimmed of whitespace and control
// characters.
func (r *Request) Query(key string) string {
	return r.QueryLevel(key, sanitizer.Trim)
}

// QueryLevel returns a query parameter sanitized at the given level.
func (r *Request) QueryLevel(key string, level sanitizer.Level) string {
	return sanitizer.Apply(r.query.Get(key), level)
}

// Post returns a body field trimmed of whitespace and control
// characters. Non-string JSON values return the empty string; use
// PostRaw for those.
func (r *Request) Post(key string) string {
	return r.PostLevel(key, sanitizer.Trim)
}

// PostLevel returns a body field sanitized at the given level.
func (r *Request) PostLevel(key string, level sanitizer.Level) string {
	if s, ok := r.body[key].(string); ok {
		return sanitizer.Apply(s, level)
	}
	return ""
}

// PostRaw returns a body field without sanitization, preserving its
// decoded JSON type.
func (r *Request) PostRaw(key string) (any, bool) {
	v, ok := r.body[key]
	return v, ok
}

// Files returns the uploaded file descriptors.
func (r *Request) Files() []*multipart.FileHeader {
	return r.files
}

// Mutating reports whether the method implies state change and thus
// requires CSRF validation under an authorized session.
func (r *Request) Mutating() bool {
	switch r.method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// newCorrelationID returns 16 hex characters of randomness.
func newCorrelationID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b[:])
}

// normalizePath percent-decodes the path, strips any query remnant,
// and trims the trailing slash (the root path stays "/").
func normalizePath(p string) string {
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
