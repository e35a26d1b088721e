package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/sentinel"
)

const (
	hierarchyKeyPrefix = "partnersearch:hierarchy:"
	artifactKeyPrefix  = "partnersearch:export:"
)

// RedisHierarchyCache shares hierarchy lookups across instances.
type RedisHierarchyCache struct {
	client redis.UniversalClient
}

func NewRedisHierarchyCache(client redis.UniversalClient) *RedisHierarchyCache {
	return &RedisHierarchyCache{client: client}
}

func (c *RedisHierarchyCache) Get(ctx context.Context, duns string) (*models.Envelope, error) {
	raw, err := c.client.Get(ctx, hierarchyKeyPrefix+duns).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get hierarchy: %w", err)
	}
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode cached hierarchy: %w", err)
	}
	return &env, nil
}

func (c *RedisHierarchyCache) Set(ctx context.Context, env *models.Envelope, ttl time.Duration) error {
	if env == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode hierarchy: %w", err)
	}
	if err := c.client.Set(ctx, hierarchyKeyPrefix+env.DUNS, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set hierarchy: %w", err)
	}
	return nil
}

// RedisArtifactStore lets any instance serve a download link.
type RedisArtifactStore struct {
	client redis.UniversalClient
}

func NewRedisArtifactStore(client redis.UniversalClient) *RedisArtifactStore {
	return &RedisArtifactStore{client: client}
}

func (s *RedisArtifactStore) Put(ctx context.Context, a *Artifact, ttl time.Duration) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := s.client.Set(ctx, artifactKeyPrefix+a.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set artifact: %w", err)
	}
	return nil
}

func (s *RedisArtifactStore) Take(ctx context.Context, id string) (*Artifact, error) {
	raw, err := s.client.GetDel(ctx, artifactKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis take artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &a, nil
}
