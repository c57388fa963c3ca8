package rate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/gatekeeper/internal/cache"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// absent es el marcador cacheado para "este endpoint no tiene límite
// configurado", así un endpoint sin fila no golpea la base en cada request.
var absent = []byte("null")

// ConfigProvider resuelve la configuración de límite por endpoint con un
// cache de TTL corto delante del repositorio. Las lecturas concurrentes del
// mismo endpoint se colapsan con singleflight.
type ConfigProvider struct {
	repo  repository.RateLimitRepository
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewConfigProvider crea el provider. ttl típico: 30s.
func NewConfigProvider(repo repository.RateLimitRepository, c cache.Cache, ttl time.Duration) *ConfigProvider {
	return &ConfigProvider{repo: repo, cache: c, ttl: ttl}
}

// Get retorna la config del endpoint o nil si no hay límite configurado.
func (p *ConfigProvider) Get(ctx context.Context, endpointKey string) (*repository.RateLimitConfig, error) {
	key := "rlcfg:" + endpointKey
	if b, err := p.cache.Get(ctx, key); err == nil {
		return decode(b)
	}

	v, err, _ := p.group.Do(endpointKey, func() (any, error) {
		cfg, err := p.repo.GetByEndpoint(ctx, endpointKey)
		if errors.Is(err, repository.ErrNotFound) {
			_ = p.cache.Set(ctx, key, absent, p.ttl)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		_ = p.cache.Set(ctx, key, b, p.ttl)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*repository.RateLimitConfig), nil
}

func decode(b []byte) (*repository.RateLimitConfig, error) {
	if string(b) == string(absent) {
		return nil, nil
	}
	var cfg repository.RateLimitConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
