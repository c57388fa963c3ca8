// Package cache define una interfaz mínima de cache de bytes con TTL.
// Las implementaciones viven en los subpaquetes memory y redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss indica que la clave no existe o expiró.
var ErrMiss = errors.New("cache: miss")

// Cache es un cache clave/valor con expiración por entrada.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
