package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"dialoguecafe/models"
)

const prefsPrefix = "prefs:"

// Store persists per-device accessibility preferences.
type Store interface {
	Get(ctx context.Context, deviceID string) (models.AccessibilityPrefs, error)
	Set(ctx context.Context, deviceID string, p models.AccessibilityPrefs) error
}

// RedisStore implements Store on redis. Preferences have no TTL: the
// toggles should survive however long a visitor stays away.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the device's preferences, or the defaults for an unknown
// device.
func (s *RedisStore) Get(ctx context.Context, deviceID string) (models.AccessibilityPrefs, error) {
	data, err := s.client.Get(ctx, prefsPrefix+deviceID).Result()
	if err == redis.Nil {
		return models.DefaultAccessibilityPrefs(), nil
	}
	if err != nil {
		return models.AccessibilityPrefs{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	var p models.AccessibilityPrefs
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return models.AccessibilityPrefs{}, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Set(ctx context.Context, deviceID string, p models.AccessibilityPrefs) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, prefsPrefix+deviceID, b, 0).Err(); err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}
	return nil
}
