package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to redis for read-model caching. Returns nil
// when the server is unreachable so callers can degrade to no-op
// invalidation.
func NewRedisClient(addr, password string, db int, l *logrus.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		l.WithError(pingErr).Warn("redis unreachable, cache invalidation disabled")
		_ = client.Close()
		return nil
	}
	return client
}

// RedisInvalidator drops cached read models by key pattern after booking
// or ledger mutations commit.
type RedisInvalidator struct {
	client *redis.Client
}

func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

func (r *RedisInvalidator) InvalidatePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iterErr := iter.Err(); iterErr != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, iterErr)
	}
	if len(keys) == 0 {
		return nil
	}
	if delErr := r.client.Del(ctx, keys...).Err(); delErr != nil {
		return fmt.Errorf("redis del: %w", delErr)
	}
	return nil
}
