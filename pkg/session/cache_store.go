package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fastraven/fastraven/pkg/cache"
)

const (
	sessionKeyPrefix = "session:"
	userIndexPrefix  = "session:user:"
)

// sessionRecord is the wire shape persisted in the cache engine.
// The unexported lifecycle flags of Session are intentionally not
// part of it.
type sessionRecord struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id,omitempty"`
	CSRFToken    string         `json:"csrf_token,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// CacheStore persists sessions in a cache engine. Expiry is enforced
// twice: the engine's TTL evicts the record, and Get re-checks
// ExpiresAt for backends with coarse TTL handling.
//
// A per-user index of session IDs supports DeleteByUserID. The index
// is maintained best-effort; a stale entry only costs a no-op delete.
type CacheStore struct {
	engine cache.Engine
}

// NewCacheStore creates a session store backed by the given engine.
func NewCacheStore(engine cache.Engine) *CacheStore {
	return &CacheStore{engine: engine}
}

func (c *CacheStore) Create(ctx context.Context, s *Session) error {
	if err := c.put(ctx, s); err != nil {
		return err
	}
	c.indexAdd(ctx, s)
	return nil
}

func (c *CacheStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, ok := c.engine.Read(ctx, sessionKeyPrefix+id)
	if !ok {
		return nil, ErrNotFound
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrNotFound
	}

	s := &Session{
		ID:           rec.ID,
		UserID:       rec.UserID,
		CSRFToken:    rec.CSRFToken,
		Data:         rec.Data,
		CreatedAt:    rec.CreatedAt,
		LastActiveAt: rec.LastActiveAt,
		ExpiresAt:    rec.ExpiresAt,
	}
	if s.IsExpired() {
		c.engine.Remove(ctx, sessionKeyPrefix+id)
		return nil, ErrExpired
	}
	return s, nil
}

func (c *CacheStore) Update(ctx context.Context, prevID string, s *Session) error {
	if prevID != s.ID {
		c.engine.Remove(ctx, sessionKeyPrefix+prevID)
	}
	if err := c.put(ctx, s); err != nil {
		return err
	}
	c.indexAdd(ctx, s)
	return nil
}

func (c *CacheStore) Delete(ctx context.Context, id string) error {
	c.engine.Remove(ctx, sessionKeyPrefix+id)
	return nil
}

func (c *CacheStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, _ := c.userIndex(ctx, userID)
	for _, id := range ids {
		c.engine.Remove(ctx, sessionKeyPrefix+id)
	}
	c.engine.Remove(ctx, userIndexPrefix+userID)
	return nil
}

func (c *CacheStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	s, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	s.LastActiveAt = lastActiveAt
	return c.put(ctx, s)
}

func (c *CacheStore) put(ctx context.Context, s *Session) error {
	rec := sessionRecord{
		ID:           s.ID,
		UserID:       s.UserID,
		CSRFToken:    s.CSRFToken,
		Data:         s.Data,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var value map[string]any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if !c.engine.Write(ctx, sessionKeyPrefix+s.ID, value, ttl) {
		return ErrStoreUnavailable
	}
	return nil
}

func (c *CacheStore) userIndex(ctx context.Context, userID string) ([]string, bool) {
	raw, ok := c.engine.Read(ctx, userIndexPrefix+userID)
	if !ok {
		return nil, false
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, true
}

func (c *CacheStore) indexAdd(ctx context.Context, s *Session) {
	if s.UserID == "" {
		return
	}
	ids, _ := c.userIndex(ctx, s.UserID)
	for _, id := range ids {
		if id == s.ID {
			return
		}
	}
	ids = append(ids, s.ID)
	as := make([]any, len(ids))
	for i, id := range ids {
		as[i] = id
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl > 0 {
		c.engine.Write(ctx, userIndexPrefix+s.UserID, as, ttl)
	}
}
