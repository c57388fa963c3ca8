package repository

import (
	"context"
	"time"
)

// SystemTenantName es el nombre del tenant "system", inmutable y siempre activo.
const SystemTenantName = "system"

// Tenant representa un arrendatario del sistema.
type Tenant struct {
	ID        string
	Name      string // globalmente único
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmailDomainMapping asocia un dominio de email a un tenant.
// Los dominios se comparan case-insensitive; solo puede haber un mapping
// activo por dominio a la vez.
type EmailDomainMapping struct {
	TenantID string
	Domain   string
	Active   bool
}

// VanityHostMapping asocia un hostname (con puerto opcional embebido
// "host:puerto") a un tenant. Mismas invariantes que EmailDomainMapping.
type VanityHostMapping struct {
	TenantID string
	Host     string
	Active   bool
}

// TenantRepository define operaciones de lectura sobre tenants y mappings.
// El CRUD de estas entidades vive fuera del core; acá solo se lee.
type TenantRepository interface {
	// GetByID busca un tenant por su ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Tenant, error)

	// GetByName busca un tenant por su nombre único.
	GetByName(ctx context.Context, name string) (*Tenant, error)

	// ListEmailDomainMappings retorna los mappings de dominio ACTIVOS.
	ListEmailDomainMappings(ctx context.Context) ([]EmailDomainMapping, error)

	// ListVanityHostMappings retorna los mappings de host ACTIVOS.
	ListVanityHostMappings(ctx context.Context) ([]VanityHostMapping, error)
}
