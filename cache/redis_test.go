package cache

import (
	"context"
	"testing"
	"time"

	"restaurant-api/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var _ middleware.ResponseCache = (*RedisCache)(nil)

func TestRedisCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisCache(client)

	_, found, err := c.Get(context.Background(), "idempotency:u1:k1")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, c.Set(context.Background(), "idempotency:u1:k1", []byte("{}"), time.Minute))
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
