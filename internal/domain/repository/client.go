package repository

import "context"

// Client representa un cliente OAuth2 registrado.
type Client struct {
	ClientID     string  // identificador público, único
	TenantID     *string // nil = disponible para todos los tenants
	Name         string
	Confidential bool
	SecretHash   string // solo si Confidential
	RedirectURIs []string
	Scopes       []string
	Active       bool
}

// AllowsRedirectURI verifica match EXACTO contra las URIs registradas.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// VisibleToTenant verifica si el client puede usarse desde el tenant dado.
func (c *Client) VisibleToTenant(tenantID string) bool {
	return c.TenantID == nil || *c.TenantID == tenantID
}

// ClientRepository define operaciones de lectura sobre OAuth clients.
type ClientRepository interface {
	// GetByClientID busca un client por su client_id público.
	// Retorna ErrNotFound si no existe.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)
}
