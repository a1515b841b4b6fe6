package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var _ repository.LoginAttemptStore = (*MemoryStore)(nil)

// MemoryStore implementación en memoria para una sola instancia y tests.
// Con varias réplicas cada una llevaría su propia cuenta: en ese caso usar RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewMemoryStore crea el almacén vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{attempts: make(map[string][]time.Time), now: time.Now}
}

// prune descarta los intentos fuera de la ventana. Llamar con el lock tomado.
func (s *MemoryStore) prune(key string, window time.Duration) []time.Time {
	cutoff := s.now().Add(-window)
	kept := s.attempts[key][:0]
	for _, t := range s.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(s.attempts, key)
		return nil
	}
	s.attempts[key] = kept
	return kept
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := append(s.prune(key, window), s.now())
	s.attempts[key] = kept
	return len(kept), nil
}

func (s *MemoryStore) Count(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prune(key, window)), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}
