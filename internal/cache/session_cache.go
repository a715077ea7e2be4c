package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bamboofin/bamboo_portal/internal/models"
)

const sessionIndexKey = "session:index"

// SessionCache stores portal sessions in Redis.
type SessionCache struct {
	redis *RedisClient
	now   func() time.Time
}

// NewSessionCache creates a new SessionCache.
func NewSessionCache(redis *RedisClient) *SessionCache {
	return &SessionCache{redis: redis, now: time.Now}
}

// keyByID returns the primary key of a session.
func (c *SessionCache) keyByID(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// keyByToken returns the secondary key of a session, indexed by a digest of
// the backend token.
func (c *SessionCache) keyByToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("session:token:%s", hex.EncodeToString(sum[:]))
}

// ttl returns how long s should live in Redis.
func (c *SessionCache) ttl(s *models.Session) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	return s.ExpiresAt.Sub(c.now())
}

// Save stores s under its id and its token digest.
func (c *SessionCache) Save(ctx context.Context, s *models.Session) error {
	ttl := c.ttl(s)
	if ttl < 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.redis.Set(ctx, c.keyByID(s.ID), string(data), ttl); err != nil {
		return fmt.Errorf("failed to set session key: %w", err)
	}
	if err := c.redis.Set(ctx, c.keyByToken(s.Token), s.ID, ttl); err != nil {
		return fmt.Errorf("failed to set token key: %w", err)
	}
	if err := c.redis.AddMember(ctx, sessionIndexKey, s.ID); err != nil {
		return fmt.Errorf("failed to index session: %w", err)
	}
	return nil
}

// Get returns the session with id, or ErrMiss.
func (c *SessionCache) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := c.redis.Get(ctx, c.keyByID(id))
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// GetByToken returns the session owning a backend token, or ErrMiss.
func (c *SessionCache) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	id, err := c.redis.Get(ctx, c.keyByToken(token))
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, id)
}

// Delete removes s from Redis.
func (c *SessionCache) Delete(ctx context.Context, s *models.Session) error {
	if err := c.redis.Delete(ctx, c.keyByID(s.ID), c.keyByToken(s.Token)); err != nil {
		return err
	}
	return c.redis.RemoveMember(ctx, sessionIndexKey, s.ID)
}

// IDs lists the indexed session ids. Some may already have expired.
func (c *SessionCache) IDs(ctx context.Context) ([]string, error) {
	return c.redis.Members(ctx, sessionIndexKey)
}

// Forget drops id from the index.
func (c *SessionCache) Forget(ctx context.Context, id string) error {
	return c.redis.RemoveMember(ctx, sessionIndexKey, id)
}
