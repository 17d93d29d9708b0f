package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/phambaophuc/photo-transform/internal/config"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds rendered derivatives and job state.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
	Health(ctx context.Context) string
}

type RedisCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &RedisCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	return c.redisClient.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Health(ctx context.Context) string {
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

// Stats reports key count and memory info from the redis server.
func (c *RedisCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	pipeline := c.redisClient.Pipeline()

	infoCmd := pipeline.Info(ctx, "memory")
	dbSizeCmd := pipeline.DBSize(ctx)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	return map[string]interface{}{
		"db_keys": dbSizeCmd.Val(),
		"info":    infoCmd.Val(),
	}, nil
}

func (c *RedisCache) Close() error {
	return c.redisClient.Close()
}

// DeletePrefix removes every key starting with prefix.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.redisClient.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan error: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

const DefaultMemoryCacheSize = 1000

// MemoryCache is an in-process LRU used when redis is not configured.
// Entries expire after ttl; ttl <= 0 keeps them until evicted.
type MemoryCache struct {
	items *expirable.LRU[string, []byte]
	size  int
}

// NewMemoryCache holds at most size entries, DefaultMemoryCacheSize when size <= 0.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	return &MemoryCache{
		items: expirable.NewLRU[string, []byte](size, nil, ttl),
		size:  size,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := c.items.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte) error {
	c.items.Add(key, data)
	return nil
}

func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	for _, key := range c.items.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.items.Remove(key)
		}
	}
	return nil
}

func (c *MemoryCache) Health(ctx context.Context) string {
	return "healthy"
}

func (c *MemoryCache) Stats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{
		"db_keys":  c.items.Len(),
		"capacity": c.size,
	}, nil
}
