// Package memory implementa cache.Cache sobre patrickmn/go-cache.
// Pensado para desarrollo y single-node; en producción usar el backend redis.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/gatekeeper/internal/cache"
)

type memoryCache struct {
	c *gocache.Cache
}

// New crea un cache en memoria con limpieza periódica de entradas vencidas.
func New(defaultTTL, cleanupInterval time.Duration) cache.Cache {
	return &memoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, cache.ErrMiss
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, cache.ErrMiss
	}
	return b, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}
