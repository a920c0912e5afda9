package mem

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeliveryClaims shares claims across every API replica.
type RedisDeliveryClaims struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisDeliveryClaims(client redis.UniversalClient) *RedisDeliveryClaims {
	return &RedisDeliveryClaims{client: client, prefix: "subscribely:"}
}

func (s *RedisDeliveryClaims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisDeliveryClaims) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
