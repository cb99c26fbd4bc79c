package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactListKey(t *testing.T) {
	assert.Equal(t, "contacts:list:1:10:", ContactListKey(1, 10, ""))
	assert.Equal(t, "contacts:list:2:20:acme", ContactListKey(2, 20, "  ACME "))
}

func TestMemoryCache_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, ContactListKey(1, 10, ""), []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, ContactListKey(2, 10, "x"), []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "other", []byte("c"), 0))

	require.NoError(t, c.DeletePrefix(ctx, ContactListPrefix))
	assert.Equal(t, 1, c.Len())
	_, ok, _ := c.Get(ctx, "other")
	assert.True(t, ok)
}

func TestMemoryCache_CopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'z'
	v, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), v)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	assert.IsType(t, Nop{}, New(nil, 0))
	assert.IsType(t, &MemoryCache{}, New(nil, time.Second))

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	assert.IsType(t, &RedisCache{}, New(client, time.Second))
}
