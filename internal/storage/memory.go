// Package storage provides key-value backends for the statistics log.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface check.
var _ domain.KVStore = (*MemoryKV)(nil)

// MemoryKV is an in-memory key-value store. Safe for concurrent access.
// Its contents are lost when the process exits.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	log    *logger.Logger
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV(log *logger.Logger) *MemoryKV {
	return &MemoryKV{
		values: make(map[string]string),
		log:    log,
	}
}

// Get returns the value stored under key.
func (s *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		s.log.Debug("key not found: %s", key)
	}
	return v, ok, nil
}

// Set stores value under key, overwriting any previous value.
func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("set %s (%d bytes)", key, len(value))
	s.values[key] = value
	return nil
}

// Keys returns all stored keys in sorted order.
func (s *MemoryKV) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.values), nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
