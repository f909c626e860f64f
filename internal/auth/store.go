package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// TokenKey is the single entry each browser session holds.
const TokenKey = "token"

var ErrNoToken = errors.New("no token stored")

// Store persists the bearer token for a browser session. Keys passed to a
// Store are already hashed with StorageKey.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, token string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// StorageKey derives the store key from a browser session id so the raw
// cookie value never reaches the store.
func StorageKey(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return TokenKey + ":" + hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps tokens in process memory. Tokens are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNoToken
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return "", ErrNoToken
	}
	return e.token, nil
}

func (s *MemoryStore) Put(_ context.Context, key, token string, ttl time.Duration) error {
	e := memoryEntry{token: token}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}
