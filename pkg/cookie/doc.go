// Package cookie provides a cookie manager with consistent security
// attributes and optional HMAC signing.
//
// The session ID cookie helpers (GetSessionID, SetSessionID,
// ClearSessionID) apply the framework's session cookie contract:
// HttpOnly, SameSite=Lax, path "/", signed when a secret is
// configured.
package cookie
