package rate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	memcache "github.com/dropDatabas3/gatekeeper/internal/cache/memory"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// countingRepo cuenta los hits al repositorio para verificar el cacheo.
type countingRepo struct {
	hits    atomic.Int64
	configs map[string]repository.RateLimitConfig
}

func (r *countingRepo) GetByEndpoint(_ context.Context, key string) (*repository.RateLimitConfig, error) {
	r.hits.Add(1)
	if c, ok := r.configs[key]; ok {
		out := c
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func TestConfigProviderCachesHits(t *testing.T) {
	repo := &countingRepo{configs: map[string]repository.RateLimitConfig{
		"oauth_token": {EndpointKey: "oauth_token", MaxRequests: 10, WindowSeconds: 60, Enabled: true},
	}}
	p := NewConfigProvider(repo, memcache.New(time.Minute, time.Minute), 30*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cfg, err := p.Get(ctx, "oauth_token")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if cfg == nil || cfg.MaxRequests != 10 {
			t.Fatalf("config inesperada: %+v", cfg)
		}
	}
	if n := repo.hits.Load(); n != 1 {
		t.Fatalf("el repo debería recibir 1 hit, recibió %d", n)
	}
}

func TestConfigProviderCachesAbsence(t *testing.T) {
	repo := &countingRepo{}
	p := NewConfigProvider(repo, memcache.New(time.Minute, time.Minute), 30*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cfg, err := p.Get(ctx, "sin-limite")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if cfg != nil {
			t.Fatalf("endpoint sin config debe dar nil, dio %+v", cfg)
		}
	}
	if n := repo.hits.Load(); n != 1 {
		t.Fatalf("la ausencia también se cachea: esperaba 1 hit, hubo %d", n)
	}
}
