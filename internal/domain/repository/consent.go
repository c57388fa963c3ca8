package repository

import (
	"context"
	"time"
)

// Consent representa la aprobación previa de un usuario a un client.
// El par (UserID, ClientID) es único.
type Consent struct {
	ID              string
	UserID          string
	ClientID        string
	TenantID        string
	Scopes          []string
	GrantedAt       time.Time
	LastConfirmedAt time.Time
	ExpiresAt       *time.Time // nil = sin expiración explícita
}

// UsableAt verifica si el consent permite saltar la pantalla de consentimiento
// en el instante dado: "now" debe estar dentro de la ventana rodante de
// confirmación Y antes de la expiración explícita (si existe).
func (c *Consent) UsableAt(now time.Time, window time.Duration) bool {
	if now.After(c.LastConfirmedAt.Add(window)) {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	return true
}

// CoversScopes verifica que todos los scopes pedidos estén otorgados.
func (c *Consent) CoversScopes(requested []string) bool {
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// ConsentRepository define operaciones sobre user consents.
type ConsentRepository interface {
	// Upsert crea o refresca un consent: reemplaza los scopes otorgados y
	// actualiza last_confirmed_at. El core nunca hace hard-delete.
	Upsert(ctx context.Context, tenantID, userID, clientID string, scopes []string, expiresAt *time.Time) (*Consent, error)

	// Get obtiene el consent de un usuario para un client.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, tenantID, userID, clientID string) (*Consent, error)
}
