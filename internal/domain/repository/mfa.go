package repository

import (
	"context"
	"time"
)

// MFAChallenge representa el token puente "password OK, falta segundo factor".
// Un solo uso, TTL de minutos; misma invariante exactly-once que los codes.
type MFAChallenge struct {
	ID         string
	SecretHash string
	UserID     string
	TenantID   string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Consumed   bool
	IssuedIP   string
	UserAgent  string
}

// CreateMFAChallengeInput contiene los datos para emitir un challenge.
type CreateMFAChallengeInput struct {
	SecretHash string
	UserID     string
	TenantID   string
	TTL        time.Duration
	IssuedIP   string
	UserAgent  string
}

// MFAChallengeRepository define operaciones sobre challenge tokens de MFA.
type MFAChallengeRepository interface {
	// Create persiste un challenge nuevo. Retorna el ID generado.
	Create(ctx context.Context, input CreateMFAChallengeInput) (string, error)

	// Consume marca el challenge como consumido y retorna el registro, en un
	// paso atómico (ver AuthorizationCodeRepository.Consume).
	Consume(ctx context.Context, secretHash string) (*MFAChallenge, error)
}

// BackupCodeRepository define operaciones sobre backup codes de MFA.
// Una fila por code no usado; el conteo restante es exacto.
type BackupCodeRepository interface {
	// UseCode marca un backup code como usado si existe y no fue usado.
	// Retorna true si el code era válido.
	UseCode(ctx context.Context, tenantID, userID, codeHash string) (bool, error)

	// CountRemaining retorna cuántos backup codes quedan sin usar.
	CountRemaining(ctx context.Context, tenantID, userID string) (int, error)
}
