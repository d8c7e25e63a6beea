package internal

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fastraven/fastraven/pkg/cookie"
	"github.com/fastraven/fastraven/pkg/session"
)

const defaultSessionTTL = 24 * time.Hour

// Gate is the authorization gate consulted by the dispatcher. It
// bridges the session store and the session ID cookie, and owns CSRF
// token validation.
type Gate struct {
	store   session.Store
	cookies *cookie.Manager
	ttl     time.Duration
	logger  *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithSessionTTL sets the session lifetime. Default: 24 hours.
func WithSessionTTL(ttl time.Duration) GateOption {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithGateLogger sets the logger for authorization events.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate creates an authorization gate over a session store and
// cookie manager.
func NewGate(store session.Store, cookies *cookie.Manager, opts ...GateOption) *Gate {
	g := &Gate{
		store:   store,
		cookies: cookies,
		ttl:     defaultSessionTTL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load reads the session referenced by the request's cookie.
// Returns nil without error when there is no usable session: missing
// cookie, unknown ID, or expired record all count as anonymous.
func (g *Gate) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	id, err := g.cookies.GetSessionID(r)
	if err != nil {
		return nil, nil
	}
	sess, err := g.store.Get(ctx, id)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// CreateAuthorizedSession populates the three authorization slots
// (user ID, payload, CSRF token) on the request's session, rotating
// the session identifier to defeat fixation, and refreshes the
// session cookie.
func (g *Gate) CreateAuthorizedSession(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, data map[string]any, csrfToken string) (*session.Session, error) {
	sess, err := g.Load(ctx, r)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		sess = session.New(g.ttl)
		sess.Authorize(userID, csrfToken, data)
		if err := g.store.Create(ctx, sess); err != nil {
			return nil, err
		}
	} else {
		prevID := sess.ID
		sess.Authorize(userID, csrfToken, data)
		sess.ExpiresAt = time.Now().Add(g.ttl)
		if err := g.store.Update(ctx, prevID, sess); err != nil {
			return nil, err
		}
	}

	if err := g.cookies.SetSessionID(w, sess.ID, int(g.ttl.Seconds())); err != nil {
		return nil, err
	}

	g.logger.Info("session authorized",
		slog.String("user_id", userID),
		slog.String("session_id", sess.ID),
	)
	return sess, nil
}

// DestroySession removes the request's session from the store and
// replaces it with a fresh anonymous one under a new identifier, so
// the post-logout session cannot be replayed.
func (g *Gate) DestroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sess, err := g.Load(ctx, r)
	if err != nil {
		return err
	}
	if sess != nil {
		if err := g.store.Delete(ctx, sess.ID); err != nil {
			return err
		}
	}

	fresh := session.New(g.ttl)
	if err := g.store.Create(ctx, fresh); err != nil {
		return err
	}
	return g.cookies.SetSessionID(w, fresh.ID, int(g.ttl.Seconds()))
}

// ValidateSessionPresence reports whether the request carries a fully
// authorized session: all three slots populated and not expired.
// Partial state is anonymous, not an error.
func (g *Gate) ValidateSessionPresence(ctx context.Context, r *http.Request) bool {
	sess, err := g.Load(ctx, r)
	if err != nil || sess == nil {
		return false
	}
	return sess.Authorized()
}

// ValidateCSRF compares the session's issued token with the one
// submitted in the request body. Constant-time; empty tokens never
// match.
func (g *Gate) ValidateCSRF(sessionToken, requestToken string) bool {
	if sessionToken == "" || requestToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sessionToken), []byte(requestToken)) == 1
}

// NewCSRFToken returns 32 hex characters of randomness for use as a
// CSRF token at login.
func NewCSRFToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
