// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"time"

	"courtpilot/models"

	"github.com/go-redis/redis/v8"
)

const advisorContextPrefix = "advisor:ctx:"

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, runID string) (*models.AdvisorContext, error) {
	key := advisorContextPrefix + runID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.AdvisorContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var advCtx models.AdvisorContext
	if err := json.Unmarshal([]byte(data), &advCtx); err != nil {
		return nil, err
	}
	return &advCtx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, runID string, advCtx *models.AdvisorContext) error {
	key := advisorContextPrefix + runID
	b, err := json.Marshal(advCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, runID string) error {
	key := advisorContextPrefix + runID
	return s.client.Del(ctx, key).Err()
}
