package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vigilo-hq/vigilo/internal/config"
	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

// Store is the Redis-backed TTL key-value store and session index used
// for protective state in production. SET with TTL gives the
// last-write-wins semantics the remediation actions rely on.
type Store struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Storage("failed to connect to redis", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client (used by tests with miniredis)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

var _ remediation.KV = (*Store)(nil)
var _ remediation.SessionIndex = (*Store)(nil)

// Put stores a JSON value under key with the given TTL, replacing any
// existing record and its TTL.
func (s *Store) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Storage("failed to encode value for "+key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Storage("failed to write "+key, err)
	}
	return nil
}

// Get loads the value under key into out. Returns false when the key is
// absent or expired.
func (s *Store) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Storage("failed to read "+key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Storage("failed to decode "+key, err)
	}
	return true, nil
}

// Delete removes a key; deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Storage("failed to delete "+key, err)
	}
	return nil
}

// AddSession registers a session in the per-user index
func (s *Store) AddSession(ctx context.Context, userID, sessionID string) error {
	key := remediation.SessionIndexKey(userID)
	if err := s.client.SAdd(ctx, key, sessionID).Err(); err != nil {
		return errors.Storage("failed to index session for "+userID, err)
	}
	return nil
}

// SessionsOf returns the live session IDs for a user
func (s *Store) SessionsOf(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, remediation.SessionIndexKey(userID)).Result()
	if err != nil {
		return nil, errors.Storage("failed to list sessions for "+userID, err)
	}
	return ids, nil
}

// RemoveSession drops one session from the per-user index
func (s *Store) RemoveSession(ctx context.Context, userID, sessionID string) error {
	if err := s.client.SRem(ctx, remediation.SessionIndexKey(userID), sessionID).Err(); err != nil {
		return errors.Storage("failed to remove session for "+userID, err)
	}
	return nil
}

// ClearSessions drops the whole per-user index
func (s *Store) ClearSessions(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, remediation.SessionIndexKey(userID)).Err(); err != nil {
		return errors.Storage("failed to clear sessions for "+userID, err)
	}
	return nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
