// Package redis implementa cache.Cache sobre go-redis.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/gatekeeper/internal/cache"
)

type redisCache struct {
	client *goredis.Client
	prefix string
}

// New envuelve un cliente redis existente. prefix separa los espacios de
// claves cuando varias instancias comparten el mismo redis.
func New(client *goredis.Client, prefix string) cache.Cache {
	return &redisCache{client: client, prefix: prefix}
}

func (r *redisCache) key(k string) string { return r.prefix + k }

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
