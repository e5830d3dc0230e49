package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_FixedWindow(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("set TEST_REDIS_URL to run against a live redis")
	}

	ctx := context.Background()
	rl, err := NewRedisFromURL(ctx, url, 3)
	require.NoError(t, err)
	defer rl.Close()

	key := fmt.Sprintf("test|%d", time.Now().UnixNano())
	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, err := rl.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := rl.client.TTL(ctx, rl.prefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, rl.client.Del(ctx, rl.prefix+key).Err())
}

func TestNewRedisFromURL_BadURL(t *testing.T) {
	_, err := NewRedisFromURL(context.Background(), "not a url", 3)
	assert.Error(t, err)
}
