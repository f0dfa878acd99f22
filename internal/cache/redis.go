package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClient struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{
		client: rdb,
		log:    log,
	}, nil
}

// NewFromClient wraps an existing client, e.g. one pointed at a test server.
func NewFromClient(rdb *redis.Client, log *zap.Logger) *RedisClient {
	return &RedisClient{client: rdb, log: log}
}

var _ service.IdempotencyStore = (*RedisClient)(nil)

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Claim atomically reserves key for ttl. False means somebody holds it.
func (r *RedisClient) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
}

func (r *RedisClient) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
