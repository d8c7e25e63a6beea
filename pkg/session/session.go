package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session represents a server-side session. An authorized session
// carries three slots set atomically at login: the user identifier,
// arbitrary application data, and a CSRF token. All three must be
// populated for the session to count as authorized; a session missing
// any slot is treated as anonymous.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	ID        string         // unique identifier (UUID)
	UserID    string         // empty = anonymous session
	CSRFToken string         // empty = anonymous session
	Data      map[string]any // application payload set at login

	dirty bool
	isNew bool
}

// New creates a new anonymous session with a fresh UUID.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(ttl),
		isNew:        true,
		dirty:        true,
	}
}

// Authorize populates all three authorization slots and rotates the
// session ID so a pre-login identifier can never survive into an
// authenticated session.
func (s *Session) Authorize(userID, csrfToken string, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	s.ID = uuid.NewString()
	s.UserID = userID
	s.CSRFToken = csrfToken
	s.Data = data
	s.dirty = true
}

// Deauthorize clears all three authorization slots and rotates the
// session ID, returning the session to anonymous state.
func (s *Session) Deauthorize() {
	s.ID = uuid.NewString()
	s.UserID = ""
	s.CSRFToken = ""
	s.Data = nil
	s.dirty = true
}

// Authorized reports whether all three authorization slots are set.
func (s *Session) Authorized() bool {
	return s.UserID != "" && s.CSRFToken != "" && s.Data != nil
}

// SetValue stores a value in the session payload and marks it dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = val
	s.dirty = true
}

// GetValue retrieves a value from the session payload.
func (s *Session) GetValue(key string) (any, bool) {
	if s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

// DeleteValue removes a value from the session payload.
// Marks the session dirty only if the key existed.
func (s *Session) DeleteValue(key string) {
	if s.Data == nil {
		return
	}
	if _, exists := s.Data[key]; exists {
		delete(s.Data, key)
		s.dirty = true
	}
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as clean. Called after persisting.
func (s *Session) ClearDirty() {
	s.dirty = false
}

// IsNew returns true if the session was just created.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as no longer new.
// Called after the session is first persisted.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value is a typed helper to retrieve session payload values.
// Returns an error if the key doesn't exist or type assertion fails.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}

	return typed, nil
}

// ValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
