//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"partnersearch/internal/ratelimit"
	"partnersearch/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *ratelimit.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = ratelimit.NewRedisStore(s.redis.Client, nil)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestAllowAndReject() {
	ctx := context.Background()
	limit := ratelimit.Limit{Requests: 2, Window: time.Minute}

	for i := range 2 {
		r, err := s.store.Allow(ctx, "export:10.0.0.1", limit)
		s.Require().NoError(err)
		s.True(r.Allowed)
		s.Equal(1-i, r.Remaining)
	}

	r, err := s.store.Allow(ctx, "export:10.0.0.1", limit)
	s.Require().NoError(err)
	s.False(r.Allowed)
	s.True(r.ResetAt.After(time.Now()))

	s.Require().NoError(s.store.Reset(ctx, "export:10.0.0.1"))
	r, err = s.store.Allow(ctx, "export:10.0.0.1", limit)
	s.Require().NoError(err)
	s.True(r.Allowed)
}
