package repository

import "context"

// Principal es el resultado de una verificación de credenciales exitosa.
type Principal struct {
	UserID     string
	TenantID   string
	Email      string
	Active     bool
	MFAEnabled bool
	TOTPSecret []byte // secreto TOTP crudo, solo si MFAEnabled
}

// IdentityStore abstrae el backend de identidades (en el sistema original,
// una librería externa de identity management). Cualquier backend que cumpla
// este contrato es sustituible.
type IdentityStore interface {
	// VerifyCredential verifica identifier (email o username) + secret dentro
	// del tenant. Retorna ErrNotFound si las credenciales no corresponden a
	// una cuenta; el caller no distingue "no existe" de "password incorrecto".
	VerifyCredential(ctx context.Context, tenantID, identifier, secret string) (*Principal, error)

	// GetPrincipal retorna el principal por ID, sin verificar secreto.
	// Usado para re-chequear que la cuenta siga activa (refresh, MFA).
	GetPrincipal(ctx context.Context, tenantID, userID string) (*Principal, error)

	// GetRoles retorna los roles/scopes del principal.
	GetRoles(ctx context.Context, tenantID, userID string) ([]string, error)
}
