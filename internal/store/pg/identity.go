package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/security/password"
)

// identityRepo es la implementación local del IdentityStore: usuarios con
// password argon2id en la tabla users. Cualquier backend externo que cumpla
// repository.IdentityStore puede reemplazarla en el wiring.
type identityRepo Store

func (r *identityRepo) VerifyCredential(ctx context.Context, tenantID, identifier, secret string) (*repository.Principal, error) {
	const q = `
		SELECT u.id, u.tenant_id, u.email, u.active, u.password_hash,
		       m.totp_secret IS NOT NULL, COALESCE(m.totp_secret, ''::bytea)
		FROM users u
		LEFT JOIN user_mfa m ON m.user_id = u.id AND m.tenant_id = u.tenant_id
		WHERE u.tenant_id = $1 AND u.email = $2`
	var p repository.Principal
	var phc string
	err := r.pool.QueryRow(ctx, q, tenantID, strings.ToLower(strings.TrimSpace(identifier))).Scan(
		&p.UserID, &p.TenantID, &p.Email, &p.Active, &phc, &p.MFAEnabled, &p.TOTPSecret,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// misma respuesta para "no existe" y "password incorrecto"
	if !password.Verify(secret, phc) {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *identityRepo) GetPrincipal(ctx context.Context, tenantID, userID string) (*repository.Principal, error) {
	const q = `
		SELECT u.id, u.tenant_id, u.email, u.active,
		       m.totp_secret IS NOT NULL, COALESCE(m.totp_secret, ''::bytea)
		FROM users u
		LEFT JOIN user_mfa m ON m.user_id = u.id AND m.tenant_id = u.tenant_id
		WHERE u.tenant_id = $1 AND u.id = $2`
	var p repository.Principal
	err := r.pool.QueryRow(ctx, q, tenantID, userID).Scan(
		&p.UserID, &p.TenantID, &p.Email, &p.Active, &p.MFAEnabled, &p.TOTPSecret,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *identityRepo) GetRoles(ctx context.Context, tenantID, userID string) ([]string, error) {
	const q = `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.tenant_id = $1 AND ur.user_id = $2
		ORDER BY r.name`
	rows, err := r.pool.Query(ctx, q, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
