package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c, err := NewRedisCache(ctx, mr.Addr(), "", 0, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get(ctx, "ja-en:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "ja-en:abc", "lung cancer"))
	v, ok, err := c.Get(ctx, "ja-en:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "lung cancer", v)

	assert.True(t, mr.Exists(redisKeyPrefix+"ja-en:abc"))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"ja-en:abc"))

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, "ja-en:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, addr, "", 0, time.Hour)
	assert.Error(t, err)
}
