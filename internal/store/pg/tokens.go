package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type tokenRepo Store

func (r *tokenRepo) Create(ctx context.Context, in repository.CreateRefreshTokenInput) (string, error) {
	const q = `
		INSERT INTO refresh_tokens (id, tenant_id, user_id, token_hash, issued_at, expires_at, issued_ip, user_agent)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW(), NOW() + $4::interval, $5, $6)
		RETURNING id`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.TenantID, in.UserID, in.TokenHash, in.TTL.String(), in.IssuedIP, in.UserAgent,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *tokenRepo) GetByHash(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	const q = `
		SELECT id, tenant_id, user_id, token_hash, issued_at, expires_at, revoked,
		       COALESCE(issued_ip, ''), COALESCE(user_agent, '')
		FROM refresh_tokens WHERE token_hash = $1`
	var rt repository.RefreshToken
	err := r.pool.QueryRow(ctx, q, hash).Scan(
		&rt.ID, &rt.TenantID, &rt.UserID, &rt.TokenHash,
		&rt.IssuedAt, &rt.ExpiresAt, &rt.Revoked, &rt.IssuedIP, &rt.UserAgent,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *tokenRepo) RevokeAll(ctx context.Context) (int, error) {
	const q = `UPDATE refresh_tokens SET revoked = TRUE WHERE revoked = FALSE`
	ct, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *tokenRepo) RevokeAllByTenant(ctx context.Context, tenantID string) (int, error) {
	const q = `UPDATE refresh_tokens SET revoked = TRUE WHERE revoked = FALSE AND tenant_id = $1`
	ct, err := r.pool.Exec(ctx, q, tenantID)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (r *tokenRepo) RevokeAllByUser(ctx context.Context, tenantID, userID string) (int, error) {
	const q = `UPDATE refresh_tokens SET revoked = TRUE WHERE revoked = FALSE AND tenant_id = $1 AND user_id = $2`
	ct, err := r.pool.Exec(ctx, q, tenantID, userID)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}
