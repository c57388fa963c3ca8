package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

type tenantRepo Store

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	const q = `
		SELECT id, name, active, created_at, updated_at
		FROM tenants WHERE id = $1`
	var t repository.Tenant
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepo) GetByName(ctx context.Context, name string) (*repository.Tenant, error) {
	const q = `
		SELECT id, name, active, created_at, updated_at
		FROM tenants WHERE name = $1`
	var t repository.Tenant
	err := r.pool.QueryRow(ctx, q, name).Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepo) ListEmailDomainMappings(ctx context.Context) ([]repository.EmailDomainMapping, error) {
	const q = `
		SELECT tenant_id, domain, active
		FROM email_domain_mappings WHERE active = TRUE`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.EmailDomainMapping
	for rows.Next() {
		var m repository.EmailDomainMapping
		if err := rows.Scan(&m.TenantID, &m.Domain, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *tenantRepo) ListVanityHostMappings(ctx context.Context) ([]repository.VanityHostMapping, error) {
	const q = `
		SELECT tenant_id, host, active
		FROM vanity_host_mappings WHERE active = TRUE`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.VanityHostMapping
	for rows.Next() {
		var m repository.VanityHostMapping
		if err := rows.Scan(&m.TenantID, &m.Host, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
