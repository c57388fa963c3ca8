// Package tenant resuelve el tenant de un request antes de cualquier chequeo
// de credenciales, a partir del dominio de un email o del hostname.
package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// ErrNoTenant indica que ningún mapping activo cubre el dominio/host dado.
// El caller decide si exige un tenant_id explícito.
var ErrNoTenant = errors.New("tenant: no mapping for domain or host")

// Resolver mapea email domains y vanity hosts a tenant IDs usando
// longest-match-wins sobre los mappings ACTIVOS.
type Resolver struct {
	repo repository.TenantRepository
}

// NewResolver crea un resolver sobre el repositorio de tenants.
func NewResolver(repo repository.TenantRepository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveEmail resuelve el tenant a partir del dominio de un email.
// "user@x.a.b.c" prueba x.a.b.c, a.b.c, b.c, c contra los mappings activos
// y gana el match más largo (más específico).
func (r *Resolver) ResolveEmail(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return "", ErrNoTenant
	}
	domain := email[at+1:]

	mappings, err := r.repo.ListEmailDomainMappings(ctx)
	if err != nil {
		return "", err
	}
	byDomain := make(map[string]string, len(mappings))
	for _, m := range mappings {
		byDomain[strings.ToLower(m.Domain)] = m.TenantID
	}

	if id, ok := longestSuffixMatch(domain, byDomain); ok {
		return id, nil
	}
	logger.From(ctx).Debug("tenant: email domain unmatched", logger.String("domain", domain))
	return "", ErrNoTenant
}

// ResolveHost resuelve el tenant a partir del host del request, que puede
// venir como "host", "host:puerto" o "[ipv6]:puerto". Un mapping guardado con
// puerto explícito ("host:8443") matchea antes que el mapping de solo host.
func (r *Resolver) ResolveHost(ctx context.Context, host string) (string, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return "", ErrNoTenant
	}

	mappings, err := r.repo.ListVanityHostMappings(ctx)
	if err != nil {
		return "", err
	}
	byHost := make(map[string]string, len(mappings))
	for _, m := range mappings {
		byHost[strings.ToLower(m.Host)] = m.TenantID
	}

	// Primero el match exacto host:puerto, tal como llegó.
	if id, ok := byHost[host]; ok {
		return id, nil
	}

	bare := stripPort(host)
	if id, ok := longestSuffixMatch(bare, byHost); ok {
		return id, nil
	}
	logger.From(ctx).Debug("tenant: host unmatched", logger.String("host", bare))
	return "", ErrNoTenant
}

// longestSuffixMatch prueba el string exacto y luego cada dominio padre
// (quitando el label más a la izquierda) contra el set de mappings.
// Como la búsqueda va de más específico a menos específico, el primer hit
// es el match más largo.
func longestSuffixMatch(name string, mappings map[string]string) (string, bool) {
	for name != "" {
		if id, ok := mappings[name]; ok {
			return id, true
		}
		dot := strings.Index(name, ".")
		if dot < 0 {
			break
		}
		name = name[dot+1:]
	}
	return "", false
}

// stripPort quita el puerto de "host:puerto" y "[ipv6]:puerto".
func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		// literal IPv6 con brackets
		if end := strings.Index(host, "]"); end >= 0 {
			return host[1:end]
		}
		return host
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		// más de un ':' sin brackets = IPv6 pelado, no hay puerto
		if strings.Count(host, ":") == 1 {
			return host[:i]
		}
	}
	return host
}
