package internal

import "net/http"

// HeaderPolicy applies the framework's fixed security header set.
// The policy is all-or-nothing: every response gets the full set,
// applied once per request before the body is written.
type HeaderPolicy struct {
	// AllowedOrigins is the exact-match CORS origin allow-list.
	// TODO: wildcard subdomain entries are not supported yet; add
	// pattern matching when a deployment actually needs it.
	AllowedOrigins []string
}

// Apply writes the security header set onto w. origin is the
// request's Origin header, tls whether the connection was encrypted,
// api whether the matched route lives in the API space.
func (p *HeaderPolicy) Apply(w http.ResponseWriter, origin string, tls, api bool) {
	h := w.Header()

	// Suppress identifying server headers.
	h.Set("Server", "")
	h.Del("X-Powered-By")

	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Content-Security-Policy", "frame-ancestors 'none'")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

	if tls {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	// Echo the origin back only on an exact allow-list match; no
	// wildcard is ever sent because credentials are allowed.
	if origin != "" && p.originAllowed(origin) {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
	}

	if api {
		h.Set("Cache-Control", "no-store")
	} else {
		h.Set("Cache-Control", "private, no-cache")
	}
}

func (p *HeaderPolicy) originAllowed(origin string) bool {
	for _, allowed := range p.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
