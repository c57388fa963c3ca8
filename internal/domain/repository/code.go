package repository

import (
	"context"
	"time"
)

// PKCE challenge methods soportados.
const (
	PKCEMethodS256  = "S256"
	PKCEMethodPlain = "plain"
)

// AuthorizationCode representa un authorization code de un solo uso.
type AuthorizationCode struct {
	ID              string
	CodeHash        string
	UserID          string
	TenantID        string
	ClientID        string
	RedirectURI     string
	Scope           string
	CodeChallenge   string
	ChallengeMethod string
	IssuedAt        time.Time
	ExpiresAt       time.Time
	Consumed        bool
	IssuedIP        string
	UserAgent       string
}

// CreateAuthorizationCodeInput contiene los datos para emitir un code.
type CreateAuthorizationCodeInput struct {
	CodeHash        string
	UserID          string
	TenantID        string
	ClientID        string
	RedirectURI     string
	Scope           string
	CodeChallenge   string
	ChallengeMethod string
	TTL             time.Duration
	IssuedIP        string
	UserAgent       string
}

// AuthorizationCodeRepository define operaciones sobre authorization codes.
type AuthorizationCodeRepository interface {
	// Create persiste un code nuevo. Retorna el ID generado.
	Create(ctx context.Context, input CreateAuthorizationCodeInput) (string, error)

	// Consume marca el code como consumido y retorna el registro, en un solo
	// paso atómico: de dos redenciones concurrentes del mismo code exactamente
	// una recibe el registro; la otra recibe ErrConsumed.
	// Retorna ErrNotFound si el hash no existe y ErrExpired si ya venció.
	Consume(ctx context.Context, codeHash string) (*AuthorizationCode, error)
}
