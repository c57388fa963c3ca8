package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type codeRepo Store

func (r *codeRepo) Create(ctx context.Context, in repository.CreateAuthorizationCodeInput) (string, error) {
	const q = `
		INSERT INTO authorization_codes
			(id, code_hash, tenant_id, user_id, client_id, redirect_uri, scope,
			 code_challenge, challenge_method, issued_at, expires_at, issued_ip, user_agent)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW() + $9::interval, $10, $11)
		RETURNING id`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.CodeHash, in.TenantID, in.UserID, in.ClientID, in.RedirectURI, in.Scope,
		in.CodeChallenge, in.ChallengeMethod, in.TTL.String(), in.IssuedIP, in.UserAgent,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Consume marca consumed en un solo UPDATE condicional: de dos redenciones
// concurrentes exactamente una recibe la fila, la otra cae al diagnóstico.
func (r *codeRepo) Consume(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	const q = `
		UPDATE authorization_codes
		SET consumed = TRUE
		WHERE code_hash = $1 AND consumed = FALSE AND expires_at > NOW()
		RETURNING id, code_hash, tenant_id, user_id, client_id, redirect_uri, scope,
		          code_challenge, challenge_method, issued_at, expires_at,
		          COALESCE(issued_ip, ''), COALESCE(user_agent, '')`
	var ac repository.AuthorizationCode
	err := r.pool.QueryRow(ctx, q, codeHash).Scan(
		&ac.ID, &ac.CodeHash, &ac.TenantID, &ac.UserID, &ac.ClientID,
		&ac.RedirectURI, &ac.Scope, &ac.CodeChallenge, &ac.ChallengeMethod,
		&ac.IssuedAt, &ac.ExpiresAt, &ac.IssuedIP, &ac.UserAgent,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.diagnoseMiss(ctx, codeHash)
	}
	if err != nil {
		return nil, err
	}
	ac.Consumed = true
	return &ac, nil
}

// diagnoseMiss distingue not-found / consumido / expirado para el logging del
// service. Hacia el cliente todos terminan en invalid_grant igual.
func (r *codeRepo) diagnoseMiss(ctx context.Context, codeHash string) error {
	const q = `SELECT consumed, expires_at FROM authorization_codes WHERE code_hash = $1`
	var consumed bool
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, q, codeHash).Scan(&consumed, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return err
	}
	if consumed {
		return repository.ErrConsumed
	}
	return repository.ErrExpired
}
