package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/sentinel"
)

type InMemoryCacheSuite struct {
	suite.Suite
	now time.Time
}

func TestInMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(InMemoryCacheSuite))
}

func (s *InMemoryCacheSuite) SetupTest() {
	s.now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryCacheSuite) clock() time.Time { return s.now }

func (s *InMemoryCacheSuite) TestHierarchyCache() {
	ctx := context.Background()
	c := NewInMemoryHierarchyCache(s.clock)

	s.Run("miss returns ErrNotFound", func() {
		_, err := c.Get(ctx, "804735132")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("hit within ttl", func() {
		s.Require().NoError(c.Set(ctx, &models.Envelope{DUNS: "804735132", DataSource: "Mock Data"}, time.Minute))
		env, err := c.Get(ctx, "804735132")
		s.Require().NoError(err)
		s.Equal("Mock Data", env.DataSource)
	})

	s.Run("expired entry is a miss", func() {
		s.now = s.now.Add(time.Minute)
		_, err := c.Get(ctx, "804735132")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("zero ttl disables caching", func() {
		s.Require().NoError(c.Set(ctx, &models.Envelope{DUNS: "001234567"}, 0))
		_, err := c.Get(ctx, "001234567")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryCacheSuite) TestArtifactStore() {
	ctx := context.Background()
	store := NewInMemoryArtifactStore(s.clock)
	s.Require().NoError(store.Put(ctx, &Artifact{ID: "a1", FileName: "f.xlsx", Data: []byte("xlsx")}, time.Minute))

	s.Run("artifact is served once", func() {
		a, err := store.Take(ctx, "a1")
		s.Require().NoError(err)
		s.Equal([]byte("xlsx"), a.Data)

		_, err = store.Take(ctx, "a1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired artifact is gone", func() {
		s.Require().NoError(store.Put(ctx, &Artifact{ID: "a2"}, time.Second))
		s.now = s.now.Add(2 * time.Second)
		_, err := store.Take(ctx, "a2")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
