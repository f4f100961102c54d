package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"review_scraper/internal/adapters/observability"
)

// Cache is a JSON value cache on top of redis. Every key is namespaced
// under prefix so several deployments can share one database.
type Cache struct {
	c      *redis.Client
	prefix string
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), "scraper:")
}

func NewWithClient(c *redis.Client, prefix string) *Cache {
	return &Cache{c: c, prefix: prefix}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, r.prefix+key, b, ttl).Err()
}

func (r *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, full...).Err()
}

// Keys lists keys matching a glob pattern, without the prefix. It walks the
// keyspace with SCAN so large databases are not blocked.
func (r *Cache) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	it := r.c.Scan(ctx, 0, r.prefix+pattern, 100).Iterator()
	for it.Next(ctx) {
		out = append(out, it.Val()[len(r.prefix):])
	}
	return out, it.Err()
}
