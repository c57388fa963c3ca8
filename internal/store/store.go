// Package store agrega los repositorios del core detrás de una sola interfaz.
// Adapters disponibles: pg (producción, pgxpool) y memory (tests/dev).
package store

import (
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// Store expone todos los repositorios sobre un mismo backend.
type Store interface {
	Tenants() repository.TenantRepository
	Clients() repository.ClientRepository
	RefreshTokens() repository.RefreshTokenRepository
	AuthorizationCodes() repository.AuthorizationCodeRepository
	Consents() repository.ConsentRepository
	MFAChallenges() repository.MFAChallengeRepository
	BackupCodes() repository.BackupCodeRepository
	RateLimits() repository.RateLimitRepository
	Identities() repository.IdentityStore
}
