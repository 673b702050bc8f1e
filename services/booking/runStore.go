// File: services/booking/runStore.go
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courtpilot/models"
	"courtpilot/utils"

	"github.com/go-redis/redis/v8"
)

const (
	runKeyPrefix = "run:"
	runTTL       = 24 * time.Hour
)

// RunStore keeps live booking-run state so API polls can watch a run move
// through the workflow. Terminal runs are archived separately; the live
// entry expires on its own.
type RunStore interface {
	Save(ctx context.Context, run *models.BookingRun) error
	Get(ctx context.Context, runID string) (*models.BookingRun, error)
	Delete(ctx context.Context, runID string) error
}

// RedisRunStore is the production RunStore.
type RedisRunStore struct {
	Client *redis.Client
}

func NewRedisRunStore() *RedisRunStore {
	return &RedisRunStore{Client: utils.GetRunStoreClient()}
}

// Save writes the run through to Redis, stamping UpdatedAt.
func (s *RedisRunStore) Save(ctx context.Context, run *models.BookingRun) error {
	run.UpdatedAt = time.Now()
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal booking run: %w", err)
	}
	if err := s.Client.Set(ctx, runKeyPrefix+run.RunID, data, runTTL).Err(); err != nil {
		return fmt.Errorf("failed to store booking run: %w", err)
	}
	return nil
}

func (s *RedisRunStore) Get(ctx context.Context, runID string) (*models.BookingRun, error) {
	data, err := s.Client.Get(ctx, runKeyPrefix+runID).Result()
	if err == redis.Nil {
		return nil, NewRunNotFound(runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking run: %w", err)
	}
	var run models.BookingRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to parse booking run: %w", err)
	}
	return &run, nil
}

func (s *RedisRunStore) Delete(ctx context.Context, runID string) error {
	if err := s.Client.Del(ctx, runKeyPrefix+runID).Err(); err != nil {
		return fmt.Errorf("failed to delete booking run: %w", err)
	}
	return nil
}
