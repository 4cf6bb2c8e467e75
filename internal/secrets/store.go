// Package secrets persists configuration secrets (API keys, repository
// identifiers) as single key-value records. Values are written by
// administrative tools and read back by other tools at invocation time;
// they are never returned to a caller.
package secrets

import (
	"context"
	"errors"
	"sync"
)

// The fixed set of configuration keys.
const (
	KeyGithubToken  = "github_token"
	KeyGithubRepo   = "github_repo"
	KeyGeminiAPIKey = "gemini_api_key"
)

// ErrNotFound reports an absent key. Absence is a valid state meaning
// "not configured".
var ErrNotFound = errors.New("secrets: key not found")

// KnownKeys returns the fixed key set in a stable order.
func KnownKeys() []string {
	return []string{KeyGithubToken, KeyGithubRepo, KeyGeminiAPIKey}
}

// IsKnownKey reports whether key belongs to the fixed set.
func IsKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Store is single-key get/set storage for configuration secrets.
// Writes overwrite (last-write-wins); there is no delete.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Close() error
}

// MemoryStore is a map-backed Store used by tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Set stores a value for the key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Get retrieves the value for the key or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
