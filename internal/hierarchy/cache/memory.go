package cache

import (
	"context"
	"sync"
	"time"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/sentinel"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// ttlMap is a mutex guarded map whose entries expire lazily on read.
type ttlMap[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
}

func newTTLMap[T any](now func() time.Time) *ttlMap[T] {
	if now == nil {
		now = time.Now
	}
	return &ttlMap[T]{entries: make(map[string]entry[T]), now: now}
}

func (m *ttlMap[T]) get(key string, remove bool) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	e, ok := m.entries[key]
	if !ok {
		return zero, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return zero, false
	}
	if remove {
		delete(m.entries, key)
	}
	return e.value, true
}

func (m *ttlMap[T]) set(key string, v T, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = entry[T]{value: v, expiresAt: now.Add(ttl)}
}

// InMemoryHierarchyCache is the single-instance HierarchyCache.
type InMemoryHierarchyCache struct {
	m *ttlMap[models.Envelope]
}

func NewInMemoryHierarchyCache(now func() time.Time) *InMemoryHierarchyCache {
	return &InMemoryHierarchyCache{m: newTTLMap[models.Envelope](now)}
}

func (c *InMemoryHierarchyCache) Get(_ context.Context, duns string) (*models.Envelope, error) {
	env, ok := c.m.get(duns, false)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &env, nil
}

func (c *InMemoryHierarchyCache) Set(_ context.Context, env *models.Envelope, ttl time.Duration) error {
	if env == nil || ttl <= 0 {
		return nil
	}
	c.m.set(env.DUNS, *env, ttl)
	return nil
}

// InMemoryArtifactStore is the single-instance ArtifactStore.
type InMemoryArtifactStore struct {
	m *ttlMap[Artifact]
}

func NewInMemoryArtifactStore(now func() time.Time) *InMemoryArtifactStore {
	return &InMemoryArtifactStore{m: newTTLMap[Artifact](now)}
}

func (s *InMemoryArtifactStore) Put(_ context.Context, a *Artifact, ttl time.Duration) error {
	s.m.set(a.ID, *a, ttl)
	return nil
}

func (s *InMemoryArtifactStore) Take(_ context.Context, id string) (*Artifact, error) {
	a, ok := s.m.get(id, true)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}
