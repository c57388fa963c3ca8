package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type clientRepo Store

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	const q = `
		SELECT client_id, tenant_id, name, confidential, COALESCE(secret_hash, ''),
		       redirect_uris, scopes, active
		FROM oauth_clients WHERE client_id = $1`
	var c repository.Client
	err := r.pool.QueryRow(ctx, q, clientID).Scan(
		&c.ClientID, &c.TenantID, &c.Name, &c.Confidential, &c.SecretHash,
		&c.RedirectURIs, &c.Scopes, &c.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
