package store

import (
	"context"
	"sort"
	"sync"

	"partnersearch/internal/company/models"
)

// InMemoryStore is the default Store when no database is configured.
type InMemoryStore struct {
	mu        sync.RWMutex
	companies map[string]models.Company
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{companies: make(map[string]models.Company)}
}

func (s *InMemoryStore) Upsert(_ context.Context, company models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.DUNS] = company
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]models.Company, error) {
	s.mu.RLock()
	out := make([]models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].DUNS < out[j].DUNS
		}
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
