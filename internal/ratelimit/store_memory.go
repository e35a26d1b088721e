package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps sliding windows in process. Limits are per instance.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemoryStore(now func() time.Time) *InMemoryStore {
	if now == nil {
		now = time.Now
	}
	return &InMemoryStore{windows: make(map[string]*slidingWindow), now: now}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit Limit) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w := s.windows[key]
	if w == nil {
		w = &slidingWindow{}
		s.windows[key] = w
	}
	w.cleanup(now, limit.Window)

	if len(w.timestamps) >= limit.Requests {
		return Result{
			Allowed:   false,
			Limit:     limit.Requests,
			Remaining: 0,
			ResetAt:   w.timestamps[0].Add(limit.Window),
		}, nil
	}
	w.timestamps = append(w.timestamps, now)
	return Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(w.timestamps),
		ResetAt:   w.timestamps[0].Add(limit.Window),
	}, nil
}

func (s *InMemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// cleanup drops timestamps that fell out of the window.
func (w *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(w.timestamps); i++ {
		if w.timestamps[i].After(cutoff) {
			break
		}
	}
	w.timestamps = w.timestamps[i:]
}
