// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"dialoguecafe/config"
)

var (
	// CacheClient is the generic cache client (booking idempotency keys, menu cache).
	CacheClient *redis.Client
	// AssistantCacheClient is the dedicated client for assistant conversation context.
	AssistantCacheClient *redis.Client
	// PrefsClient is the dedicated client for accessibility preferences.
	PrefsClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (db %d): %v", db, err)
	}
	return client
}

// InitRedis initializes all Redis clients.
func InitRedis() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	AssistantCacheClient = newRedisClient(config.AppConfig.RedisAssistantDB)
	PrefsClient = newRedisClient(config.AppConfig.RedisPrefsDB)
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	}
	return CacheClient
}

// GetAssistantCacheClient returns the Redis client for assistant context caching.
func GetAssistantCacheClient() *redis.Client {
	if AssistantCacheClient == nil {
		AssistantCacheClient = newRedisClient(config.AppConfig.RedisAssistantDB)
	}
	return AssistantCacheClient
}

// GetPrefsClient returns the Redis client for accessibility preferences.
func GetPrefsClient() *redis.Client {
	if PrefsClient == nil {
		PrefsClient = newRedisClient(config.AppConfig.RedisPrefsDB)
	}
	return PrefsClient
}
