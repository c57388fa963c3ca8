// Package rate implementa rate limiting de ventana fija sobre redis.
// Los límites por endpoint se leen de la base y se cachean con TTL corto,
// así un cambio de configuración se aplica sin redeploy.
package rate

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// Decision es el resultado de evaluar un request contra su límite.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter cuenta requests por (endpoint, subject) en ventanas fijas.
type Limiter struct {
	client   *goredis.Client
	limits   *ConfigProvider
	disabled bool
}

// NewLimiter crea el limiter. Si client es nil el limiter queda deshabilitado
// y permite todo (modo desarrollo sin redis).
func NewLimiter(client *goredis.Client, limits *ConfigProvider) *Limiter {
	return &Limiter{client: client, limits: limits, disabled: client == nil}
}

// Allow evalúa un request. subject suele ser la IP del cliente.
// Ante un error de redis se permite el request: degradar disponibilidad por
// una falla del limiter sería peor que una ventana sin límite.
func (l *Limiter) Allow(ctx context.Context, endpointKey, subject string) (Decision, error) {
	open := Decision{Allowed: true, Remaining: -1}
	if l.disabled {
		return open, nil
	}

	cfg, err := l.limits.Get(ctx, endpointKey)
	if err != nil || cfg == nil || !cfg.Enabled {
		return open, err
	}
	// Una fila mal cargada con ventana no positiva equivale a "sin límite":
	// nunca debe tumbar el endpoint.
	if cfg.WindowSeconds <= 0 {
		return open, nil
	}

	window := time.Duration(cfg.WindowSeconds) * time.Second
	bucket := time.Now().Unix() / int64(cfg.WindowSeconds)
	key := fmt.Sprintf("rl:%s:%s:%d", endpointKey, subject, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.From(ctx).Warn("rate limiter unavailable, allowing request",
			logger.Component("rate"), logger.Err(err))
		return open, nil
	}

	count := int(incr.Val())
	if count > cfg.MaxRequests {
		return Decision{
			Allowed:    false,
			Limit:      cfg.MaxRequests,
			Remaining:  0,
			RetryAfter: window,
		}, nil
	}
	return Decision{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests - count}, nil
}
