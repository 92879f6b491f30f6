package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/remediation"
	"github.com/vigilo-hq/vigilo/internal/pkg/clock"
)

// Store is an in-process TTL key-value store. It backs tests and the
// single-binary development mode; production uses the Redis store.
// Expiry is lazy: stale entries are dropped on read.
type Store struct {
	mu       sync.Mutex
	items    map[string]item
	sessions map[string]map[string]struct{}
	clk      clock.Clock
}

type item struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// New creates an empty store
func New(clk clock.Clock) *Store {
	return &Store{
		items:    make(map[string]item),
		sessions: make(map[string]map[string]struct{}),
		clk:      clk,
	}
}

var _ remediation.KV = (*Store)(nil)
var _ remediation.SessionIndex = (*Store)(nil)

// Put stores a value under key, replacing any existing record and its
// TTL (last-write-wins).
func (s *Store) Put(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expires time.Time
	if ttl > 0 {
		expires = s.clk.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item{data: data, expires: expires}
	return nil
}

// Get loads the value under key into out. Returns false when the key is
// absent or expired.
func (s *Store) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	s.mu.Lock()
	it, ok := s.items[key]
	if ok && !it.expires.IsZero() && !s.clk.Now().Before(it.expires) {
		delete(s.items, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(it.data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a key; deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// AddSession registers a session in the per-user index
func (s *Store) AddSession(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[userID] == nil {
		s.sessions[userID] = make(map[string]struct{})
	}
	s.sessions[userID][sessionID] = struct{}{}
	return nil
}

// SessionsOf returns the live session IDs for a user
func (s *Store) SessionsOf(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.sessions[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveSession drops one session from the per-user index
func (s *Store) RemoveSession(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions[userID], sessionID)
	return nil
}

// ClearSessions drops the whole per-user index
func (s *Store) ClearSessions(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
