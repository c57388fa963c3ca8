package events

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// RedisPublisher publica eventos por redis pub/sub en un canal por tipo
// (prefijo + tipo), más un canal agregado con el prefijo solo.
type RedisPublisher struct {
	client  *goredis.Client
	channel string
}

// NewRedisPublisher crea el publisher. channel típico: "gatekeeper.events".
func NewRedisPublisher(client *goredis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	b, err := e.Marshal()
	if err != nil {
		logger.From(ctx).Warn("event marshal failed",
			logger.Component("events"), logger.String("event_type", e.Type), logger.Err(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, b).Err(); err != nil {
		logger.From(ctx).Warn("event publish failed",
			logger.Component("events"), logger.String("event_type", e.Type), logger.Err(err))
		return
	}
	_ = p.client.Publish(ctx, p.channel+"."+e.Type, b).Err()
}
