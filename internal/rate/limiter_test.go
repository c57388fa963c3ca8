package rate

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	memcache "github.com/dropDatabas3/gatekeeper/internal/cache/memory"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

func newProvider(configs map[string]repository.RateLimitConfig) *ConfigProvider {
	return NewConfigProvider(&countingRepo{configs: configs}, memcache.New(time.Minute, time.Minute), 30*time.Second)
}

func TestAllowSinRedisPermiteTodo(t *testing.T) {
	l := NewLimiter(nil, newProvider(nil))

	d, err := l.Allow(context.Background(), "oauth_token", "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !d.Allowed {
		t.Fatal("sin redis el limiter debe permitir todo")
	}
}

func TestAllowVentanaNoPositivaNoLimita(t *testing.T) {
	// El cliente apunta a ningún lado a propósito: con ventana inválida el
	// limiter debe resolver antes de tocar redis, sin dividir por cero.
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	for _, window := range []int{0, -5} {
		l := NewLimiter(client, newProvider(map[string]repository.RateLimitConfig{
			"oauth_token": {EndpointKey: "oauth_token", MaxRequests: 10, WindowSeconds: window, Enabled: true},
		}))

		d, err := l.Allow(context.Background(), "oauth_token", "1.2.3.4")
		if err != nil {
			t.Fatalf("window=%d: Allow: %v", window, err)
		}
		if !d.Allowed {
			t.Fatalf("window=%d: una config inválida debe equivaler a sin límite", window)
		}
	}
}
