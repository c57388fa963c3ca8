package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type rateRepo Store

func (r *rateRepo) GetByEndpoint(ctx context.Context, endpointKey string) (*repository.RateLimitConfig, error) {
	const q = `
		SELECT endpoint_key, max_requests, window_seconds, enabled
		FROM rate_limit_configs WHERE endpoint_key = $1`
	var c repository.RateLimitConfig
	err := r.pool.QueryRow(ctx, q, endpointKey).Scan(
		&c.EndpointKey, &c.MaxRequests, &c.WindowSeconds, &c.Enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
