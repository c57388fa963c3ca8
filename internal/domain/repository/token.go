package repository

import (
	"context"
	"time"
)

// RefreshToken representa un refresh token persistido.
// El plaintext se retorna una única vez al crearlo; acá solo vive el hash.
type RefreshToken struct {
	ID        string
	UserID    string
	TenantID  string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	IssuedIP  string
	UserAgent string
}

// CreateRefreshTokenInput contiene los datos para crear un refresh token.
type CreateRefreshTokenInput struct {
	TenantID  string
	UserID    string
	TokenHash string
	TTL       time.Duration
	IssuedIP  string
	UserAgent string
}

// RefreshTokenRepository define operaciones sobre refresh tokens.
type RefreshTokenRepository interface {
	// Create crea un nuevo refresh token. Retorna el ID generado.
	Create(ctx context.Context, input CreateRefreshTokenInput) (string, error)

	// GetByHash busca un token por su hash.
	// Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// RevokeAll revoca todos los tokens no revocados del sistema.
	// Retorna el número de tokens afectados.
	RevokeAll(ctx context.Context) (int, error)

	// RevokeAllByTenant revoca todos los tokens de un tenant.
	RevokeAllByTenant(ctx context.Context, tenantID string) (int, error)

	// RevokeAllByUser revoca todos los tokens de un usuario dentro de un tenant.
	RevokeAllByUser(ctx context.Context, tenantID, userID string) (int, error)
}
