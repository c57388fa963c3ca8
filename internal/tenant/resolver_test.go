package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/store/memory"
)

func newResolver(t *testing.T) (*Resolver, *memory.Store) {
	t.Helper()
	st := memory.New()
	st.SeedTenant(repository.Tenant{ID: "t1", Name: "uno", Active: true})
	st.SeedTenant(repository.Tenant{ID: "t2", Name: "dos", Active: true})
	return NewResolver(st.Tenants()), st
}

func TestResolveEmailLongestMatchWins(t *testing.T) {
	r, st := newResolver(t)
	st.SeedEmailDomain(repository.EmailDomainMapping{TenantID: "t1", Domain: "a.b.c", Active: true})
	st.SeedEmailDomain(repository.EmailDomainMapping{TenantID: "t2", Domain: "b.c", Active: true})

	ctx := context.Background()

	got, err := r.ResolveEmail(ctx, "user@x.a.b.c")
	if err != nil {
		t.Fatalf("ResolveEmail: %v", err)
	}
	if got != "t1" {
		t.Fatalf("x.a.b.c debería resolver a t1 (match más largo), resolvió %q", got)
	}

	got, err = r.ResolveEmail(ctx, "user@q.b.c")
	if err != nil {
		t.Fatalf("ResolveEmail: %v", err)
	}
	if got != "t2" {
		t.Fatalf("q.b.c debería resolver a t2, resolvió %q", got)
	}

	if _, err := r.ResolveEmail(ctx, "user@z.com"); !errors.Is(err, ErrNoTenant) {
		t.Fatalf("z.com debería fallar con ErrNoTenant, dio %v", err)
	}
}

func TestResolveEmailCaseInsensitive(t *testing.T) {
	r, st := newResolver(t)
	st.SeedEmailDomain(repository.EmailDomainMapping{TenantID: "t1", Domain: "Example.COM", Active: true})

	got, err := r.ResolveEmail(context.Background(), "User@EXAMPLE.com")
	if err != nil || got != "t1" {
		t.Fatalf("resolución case-insensitive falló: got=%q err=%v", got, err)
	}
}

func TestResolveEmailIgnoresInactiveMappings(t *testing.T) {
	r, st := newResolver(t)
	st.SeedEmailDomain(repository.EmailDomainMapping{TenantID: "t1", Domain: "dead.io", Active: false})

	if _, err := r.ResolveEmail(context.Background(), "x@dead.io"); !errors.Is(err, ErrNoTenant) {
		t.Fatalf("mapping inactivo no debería resolver, dio %v", err)
	}
}

func TestResolveEmailMalformed(t *testing.T) {
	r, _ := newResolver(t)
	for _, email := range []string{"", "nodomain", "trailing@"} {
		if _, err := r.ResolveEmail(context.Background(), email); !errors.Is(err, ErrNoTenant) {
			t.Fatalf("email %q debería fallar con ErrNoTenant, dio %v", email, err)
		}
	}
}

func TestResolveHostExactPortBeforeBareHost(t *testing.T) {
	r, st := newResolver(t)
	st.SeedVanityHost(repository.VanityHostMapping{TenantID: "t1", Host: "login.acme.io:8443", Active: true})
	st.SeedVanityHost(repository.VanityHostMapping{TenantID: "t2", Host: "login.acme.io", Active: true})

	ctx := context.Background()

	got, err := r.ResolveHost(ctx, "login.acme.io:8443")
	if err != nil || got != "t1" {
		t.Fatalf("host:puerto exacto debería ganar: got=%q err=%v", got, err)
	}

	got, err = r.ResolveHost(ctx, "login.acme.io:9999")
	if err != nil || got != "t2" {
		t.Fatalf("puerto no mapeado debería caer al host pelado: got=%q err=%v", got, err)
	}
}

func TestResolveHostParentWalk(t *testing.T) {
	r, st := newResolver(t)
	st.SeedVanityHost(repository.VanityHostMapping{TenantID: "t1", Host: "acme.io", Active: true})

	got, err := r.ResolveHost(context.Background(), "sso.eu.acme.io")
	if err != nil || got != "t1" {
		t.Fatalf("el walk de labels padres falló: got=%q err=%v", got, err)
	}
}

func TestResolveHostBracketedIPv6(t *testing.T) {
	r, st := newResolver(t)
	st.SeedVanityHost(repository.VanityHostMapping{TenantID: "t1", Host: "::1", Active: true})

	got, err := r.ResolveHost(context.Background(), "[::1]:8080")
	if err != nil || got != "t1" {
		t.Fatalf("IPv6 con brackets y puerto falló: got=%q err=%v", got, err)
	}
}
