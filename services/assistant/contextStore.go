package assistant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"dialoguecafe/models"
)

const contextPrefix = "assistant:ctx:"

// RedisContextStore keeps per-visitor conversation state between messages.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, userID string) (*models.AssistantContext, error) {
	data, err := s.client.Get(ctx, contextPrefix+userID).Result()
	if err == redis.Nil {
		return &models.AssistantContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var actx models.AssistantContext
	if err := json.Unmarshal([]byte(data), &actx); err != nil {
		return nil, err
	}
	return &actx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, userID string, actx *models.AssistantContext) error {
	b, err := json.Marshal(actx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, contextPrefix+userID, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, contextPrefix+userID).Err()
}
