package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableCache() *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisCacheWithClient(client, time.Minute)
}

func TestTrainsKey(t *testing.T) {
	assert.Equal(t, "cache:trains", trainsKey())
}

func TestRedisCache_Unreachable(t *testing.T) {
	c := unreachableCache()
	defer c.Close()
	ctx := context.Background()

	trains, err := c.GetTrains(ctx)
	assert.Error(t, err)
	assert.Nil(t, trains)

	assert.Error(t, c.SetTrains(ctx, []domain.Train{{ID: "t1"}}))
	assert.Error(t, c.InvalidateTrains(ctx))
	assert.Error(t, c.Ping(ctx))
}
