package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactHub/storage/redis"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { redis.SetClient(nil) })
	return mr
}

func registries(t *testing.T) map[string]TokenRegistry {
	withMiniredis(t)
	return map[string]TokenRegistry{
		"redis":  NewRedisTokenRegistry(),
		"memory": NewMemoryTokenRegistry(),
	}
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, reg.Register(ctx, "1", "jti-a", time.Now().Add(time.Hour)))

			ok, err := reg.Consume(ctx, "1", "jti-a")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = reg.Consume(ctx, "1", "jti-a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestUnknownTokenIsRejected(t *testing.T) {
	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := reg.Consume(context.Background(), "1", "nope")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRevokeAllDropsEveryToken(t *testing.T) {
	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			exp := time.Now().Add(time.Hour)
			require.NoError(t, reg.Register(ctx, "1", "a", exp))
			require.NoError(t, reg.Register(ctx, "1", "b", exp))
			require.NoError(t, reg.Register(ctx, "2", "c", exp))

			require.NoError(t, reg.RevokeAll(ctx, "1"))

			ok, _ := reg.Consume(ctx, "1", "a")
			assert.False(t, ok)
			ok, _ = reg.Consume(ctx, "1", "b")
			assert.False(t, ok)
			ok, _ = reg.Consume(ctx, "2", "c")
			assert.True(t, ok)
		})
	}
}

func TestRedisRegistryKeyExpires(t *testing.T) {
	mr := withMiniredis(t)
	reg := NewRedisTokenRegistry()
	require.NoError(t, reg.Register(context.Background(), "7", "a", time.Now().Add(time.Minute)))

	key := redis.Key(tokenPrefix, "7")
	assert.True(t, mr.Exists(key))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(key))
}

func TestNewTokenRegistryFallsBackToMemory(t *testing.T) {
	redis.SetClient(nil)
	_, ok := NewTokenRegistry().(*MemoryTokenRegistry)
	assert.True(t, ok)

	withMiniredis(t)
	_, ok = NewTokenRegistry().(*RedisTokenRegistry)
	assert.True(t, ok)
}
