package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type consentRepo Store

func (r *consentRepo) Upsert(ctx context.Context, tenantID, userID, clientID string, scopes []string, expiresAt *time.Time) (*repository.Consent, error) {
	const q = `
		INSERT INTO user_consents (id, tenant_id, user_id, client_id, scopes, granted_at, last_confirmed_at, expires_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW(), $5)
		ON CONFLICT (user_id, client_id)
		DO UPDATE SET scopes = EXCLUDED.scopes,
		              last_confirmed_at = NOW(),
		              expires_at = EXCLUDED.expires_at
		RETURNING id, tenant_id, user_id, client_id, scopes, granted_at, last_confirmed_at, expires_at`
	var c repository.Consent
	err := r.pool.QueryRow(ctx, q, tenantID, userID, clientID, scopes, expiresAt).Scan(
		&c.ID, &c.TenantID, &c.UserID, &c.ClientID, &c.Scopes,
		&c.GrantedAt, &c.LastConfirmedAt, &c.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consentRepo) Get(ctx context.Context, tenantID, userID, clientID string) (*repository.Consent, error) {
	const q = `
		SELECT id, tenant_id, user_id, client_id, scopes, granted_at, last_confirmed_at, expires_at
		FROM user_consents
		WHERE tenant_id = $1 AND user_id = $2 AND client_id = $3`
	var c repository.Consent
	err := r.pool.QueryRow(ctx, q, tenantID, userID, clientID).Scan(
		&c.ID, &c.TenantID, &c.UserID, &c.ClientID, &c.Scopes,
		&c.GrantedAt, &c.LastConfirmedAt, &c.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
