package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/wato-stats/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
	epoch     uint64
}

// Store is an in-process TTL cache. Flush invalidates everything, including
// loads that are still in flight when it is called.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	epoch   uint64
	flight  resilience.SingleFlight[any]
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !e.expiresAt.After(s.now()) {
		s.Delete(context.Background(), key)
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(ctx context.Context, key string, value any) {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()
	s.setAt(ctx, key, value, epoch)
}

func (s *Store) setAt(_ context.Context, key string, value any, epoch uint64) {
	if key == "" {
		return
	}

	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.entries[key] = entry{value: value, expiresAt: expiresAt, epoch: epoch}
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) Flush(_ context.Context) {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.epoch++
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		s.mu.RLock()
		epoch := s.epoch
		s.mu.RUnlock()

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.setAt(ctx, key, loaded, epoch)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
