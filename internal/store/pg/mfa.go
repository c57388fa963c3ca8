package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type challengeRepo Store

func (r *challengeRepo) Create(ctx context.Context, in repository.CreateMFAChallengeInput) (string, error) {
	const q = `
		INSERT INTO mfa_challenge_tokens
			(id, secret_hash, tenant_id, user_id, issued_at, expires_at, issued_ip, user_agent)
		VALUES (gen_random_uuid(), $1, $2, $3, NOW(), NOW() + $4::interval, $5, $6)
		RETURNING id`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.SecretHash, in.TenantID, in.UserID, in.TTL.String(), in.IssuedIP, in.UserAgent,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Consume: mismo UPDATE condicional exactly-once que authorization_codes.
func (r *challengeRepo) Consume(ctx context.Context, secretHash string) (*repository.MFAChallenge, error) {
	const q = `
		UPDATE mfa_challenge_tokens
		SET consumed = TRUE
		WHERE secret_hash = $1 AND consumed = FALSE AND expires_at > NOW()
		RETURNING id, secret_hash, tenant_id, user_id, issued_at, expires_at,
		          COALESCE(issued_ip, ''), COALESCE(user_agent, '')`
	var ch repository.MFAChallenge
	err := r.pool.QueryRow(ctx, q, secretHash).Scan(
		&ch.ID, &ch.SecretHash, &ch.TenantID, &ch.UserID,
		&ch.IssuedAt, &ch.ExpiresAt, &ch.IssuedIP, &ch.UserAgent,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.diagnoseMiss(ctx, secretHash)
	}
	if err != nil {
		return nil, err
	}
	ch.Consumed = true
	return &ch, nil
}

func (r *challengeRepo) diagnoseMiss(ctx context.Context, secretHash string) error {
	const q = `SELECT consumed, expires_at FROM mfa_challenge_tokens WHERE secret_hash = $1`
	var consumed bool
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, q, secretHash).Scan(&consumed, &expiresAt)
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

type backupRepo Store

func (r *backupRepo) UseCode(ctx context.Context, tenantID, userID, codeHash string) (bool, error) {
	const q = `
		UPDATE mfa_backup_codes
		SET used = TRUE
		WHERE tenant_id = $1 AND user_id = $2 AND code_hash = $3 AND used = FALSE`
	ct, err := r.pool.Exec(ctx, q, tenantID, userID, codeHash)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *backupRepo) CountRemaining(ctx context.Context, tenantID, userID string) (int, error) {
	const q = `
		SELECT COUNT(*) FROM mfa_backup_codes
		WHERE tenant_id = $1 AND user_id = $2 AND used = FALSE`
	var n int
	if err := r.pool.QueryRow(ctx, q, tenantID, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
