package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pubdocs/pubdocs/internal/model"
)

const (
	// sessionPrefix follows the namespace in login session record keys.
	sessionPrefix = "auth:session:"
	// userSessionsPrefix follows the namespace in the set of a user's session IDs.
	userSessionsPrefix = "auth:user:"
)

// cachedSession represents a session record stored in Redis.
type cachedSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EmailAddress string    `json:"email_address"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SaveSession stores a session record until its expiry and indexes it under
// its user so every session of that user can be revoked at once.
func (c *Cache) SaveSession(ctx context.Context, rec *model.SessionRecord) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", rec.ID)
	}

	data, err := json.Marshal(cachedSession{
		ID:           rec.ID,
		UserID:       rec.UserID,
		EmailAddress: rec.EmailAddress,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	userKey := c.key(userSessionsPrefix, rec.UserID)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(sessionPrefix, rec.ID), data, ttl)
	pipe.SAdd(ctx, userKey, rec.ID)
	// The index lives at least as long as its newest session.
	pipe.ExpireGT(ctx, userKey, ttl)
	pipe.ExpireNX(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session record.
// Returns nil if not found or expired.
func (c *Cache) GetSession(ctx context.Context, sessionID string) (*model.SessionRecord, error) {
	data, err := c.client.Get(ctx, c.key(sessionPrefix, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	rec := &model.SessionRecord{
		ID:           cached.ID,
		UserID:       cached.UserID,
		EmailAddress: cached.EmailAddress,
		CreatedAt:    cached.CreatedAt,
		ExpiresAt:    cached.ExpiresAt,
	}
	if rec.IsExpired(time.Now()) {
		return nil, nil
	}
	return rec, nil
}

// DeleteSession removes a session record. Missing sessions are ignored.
func (c *Cache) DeleteSession(ctx context.Context, sessionID string) error {
	key := c.key(sessionPrefix, sessionID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("get session: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	var cached cachedSession
	if len(data) > 0 && json.Unmarshal(data, &cached) == nil && cached.UserID != "" {
		pipe.SRem(ctx, c.key(userSessionsPrefix, cached.UserID), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions removes every session belonging to a user.
func (c *Cache) DeleteUserSessions(ctx context.Context, userID string) error {
	userKey := c.key(userSessionsPrefix, userID)

	ids, err := c.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, c.key(sessionPrefix, id))
	}
	keys = append(keys, userKey)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}
