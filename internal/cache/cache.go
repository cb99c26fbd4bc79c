package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	commonRedis "cardscan/common/redis"

	"github.com/redis/go-redis/v9"
)

// ContactListPrefix 联系人列表缓存键前缀
const ContactListPrefix = "contacts:list:"

// Cache 缓存接口
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Name() string
}

// ContactListKey 列表查询缓存键
func ContactListKey(page, pageSize int, keyword string) string {
	return fmt.Sprintf("%s%d:%d:%s", ContactListPrefix, page, pageSize, strings.ToLower(strings.TrimSpace(keyword)))
}

// RedisCache Redis 缓存
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Name() string { return "redis" }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := commonRedis.DelByPrefix(ctx, c.client, prefix)
	return err
}

// Ping 检查 Redis 连接
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

type memoryItem struct {
	value    []byte
	expireAt time.Time
}

// MemoryCache 进程内缓存，未启用 Redis 时使用
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), now: time.Now}
}

func (c *MemoryCache) Name() string { return "memory" }

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expireAt.IsZero() && !c.now().Before(item.expireAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return item.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expireAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
	return nil
}

// Len 当前缓存条目数，含未清理的过期项
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Nop 不缓存
type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) DeletePrefix(context.Context, string) error { return nil }

// New 按配置选择缓存实现，ttl 为 0 时不缓存
func New(client redis.UniversalClient, ttl time.Duration) Cache {
	switch {
	case ttl <= 0:
		return Nop{}
	case client != nil:
		return NewRedisCache(client)
	default:
		return NewMemoryCache()
	}
}
