package conversation

import (
	"context"
	"encoding/json"
	"time"

	"bookline/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "chat:ctx:"

// RedisSessionStore persists conversation context in Redis. The idle TTL
// is enforced by Redis key expiry refreshed on every Put; the absolute
// age cap is re-checked lazily on Get.
type RedisSessionStore struct {
	client *redis.Client
	maxAge time.Duration
	idle   time.Duration
}

func NewRedisSessionStore(client *redis.Client, maxAge, idle time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, maxAge: maxAge, idle: idle}
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, bool, error) {
	key := sessionKeyPrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var convCtx models.ConversationContext
	if err := json.Unmarshal([]byte(data), &convCtx); err != nil {
		return nil, false, err
	}
	if time.Since(convCtx.CreatedAt) > s.maxAge {
		_ = s.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &convCtx, true, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error {
	key := sessionKeyPrefix + sessionID
	b, err := json.Marshal(convCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.idle).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
