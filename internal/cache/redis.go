package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    redis.UniversalClient
	trainsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, trainsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		trainsTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, trainsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, trainsTTL: trainsTTL}
}

// GetTrains returns nil, nil on a cache miss.
func (c *RedisCache) GetTrains(ctx context.Context) ([]domain.Train, error) {
	data, err := c.client.Get(ctx, trainsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var trains []domain.Train
	if err := json.Unmarshal(data, &trains); err != nil {
		return nil, err
	}
	return trains, nil
}

func (c *RedisCache) SetTrains(ctx context.Context, trains []domain.Train) error {
	payload, err := json.Marshal(trains)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trainsKey(), payload, c.trainsTTL).Err()
}

func (c *RedisCache) InvalidateTrains(ctx context.Context) error {
	return c.client.Del(ctx, trainsKey()).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func trainsKey() string {
	return "cache:trains"
}
