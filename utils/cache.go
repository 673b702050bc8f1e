// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"courtpilot/config"

	"github.com/go-redis/redis/v8"
)

var (
	// RunStoreClient is the Redis client backing booking-run state.
	RunStoreClient *redis.Client
	// AdvisorCacheClient is the dedicated client for advisor conversation context.
	AdvisorCacheClient *redis.Client
)

// InitRunStore initializes the Redis client for booking-run state (DB from AppConfig).
func InitRunStore() {
	RunStoreClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRunStoreDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := RunStoreClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Run Store): %v", err)
	}
}

// GetRunStoreClient returns the Redis client for booking-run state.
func GetRunStoreClient() *redis.Client {
	if RunStoreClient == nil {
		InitRunStore()
	}
	return RunStoreClient
}

// InitAdvisorCache initializes the Redis client for advisor context caching.
func InitAdvisorCache() {
	AdvisorCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAdvisorDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := AdvisorCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Advisor Cache): %v", err)
	}
}

// GetAdvisorCacheClient returns the Redis client for advisor context caching.
func GetAdvisorCacheClient() *redis.Client {
	if AdvisorCacheClient == nil {
		InitAdvisorCache()
	}
	return AdvisorCacheClient
}

// InitRedis initializes all Redis clients used by the service.
func InitRedis() {
	InitRunStore()
	InitAdvisorCache()
}
