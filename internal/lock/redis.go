package lock

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisManager struct {
	Client    *redis.Client
	KeyPrefix string
}

func NewRedisManager(client *redis.Client, keyPrefix string) *RedisManager {
	if keyPrefix == "" {
		keyPrefix = "resolve_lock"
	}
	return &RedisManager{Client: client, KeyPrefix: keyPrefix}
}

func (m *RedisManager) key(wallet string) string {
	return m.KeyPrefix + ":" + wallet
}

func (m *RedisManager) Acquire(ctx context.Context, wallet string, ttl time.Duration) (bool, error) {
	value := strconv.FormatInt(time.Now().Unix(), 10)
	return m.Client.SetNX(ctx, m.key(wallet), value, ttl).Result()
}

func (m *RedisManager) Release(ctx context.Context, wallet string) error {
	return m.Client.Del(ctx, m.key(wallet)).Err()
}
