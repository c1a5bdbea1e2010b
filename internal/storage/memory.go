// Package storage provides preference store implementations and the
// asynchronous writer that keeps persistence off the state machine's path.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// Compile-time interface check.
var _ domain.PreferenceStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory preference store. Safe for concurrent access.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[domain.PrefKey]string
	log    *logger.Logger
}

// NewMemoryStore creates an empty in-memory preference store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		values: make(map[domain.PrefKey]string),
		log:    log,
	}
}

// Get returns the stored value for key.
func (s *MemoryStore) Get(ctx context.Context, key domain.PrefKey) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores value under key, overwriting any previous value.
func (s *MemoryStore) Set(ctx context.Context, key domain.PrefKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("set %s=%q", key, value)
	s.values[key] = value
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key domain.PrefKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	s.log.Debug("deleted %s", key)
	return nil
}

// Snapshot returns a copy of every stored value.
func (s *MemoryStore) Snapshot() map[domain.PrefKey]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.PrefKey]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
