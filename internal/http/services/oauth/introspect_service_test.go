package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
)

func jwtClaims(sub, tenantID, scope string) jwtx.Claims {
	return jwtx.Claims{Subject: sub, TenantID: tenantID, Scope: scope}
}

func TestIntrospectActiveAccessToken(t *testing.T) {
	f := newTokenFixture(t)
	svc := NewIntrospectService(IntrospectDeps{Store: f.store, Signer: f.signer})

	access, _, err := f.signer.Issue(jwtClaims("u1", "t1", "openid"), 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	resp := svc.Introspect(context.Background(), dto.IntrospectRequest{Token: access})
	if !resp.Active {
		t.Fatal("fresh access token must introspect active")
	}
	if resp.Subject != "u1" || resp.TenantID != "t1" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Issuer != f.signer.Iss || resp.ExpiresAt == 0 {
		t.Fatalf("missing metadata: %+v", resp)
	}
}

func TestIntrospectActiveRefreshToken(t *testing.T) {
	f := newTokenFixture(t)
	svc := NewIntrospectService(IntrospectDeps{Store: f.store, Signer: f.signer})
	ctx := context.Background()

	plaintext, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		t.Fatalf("GenerateOpaqueToken: %v", err)
	}
	if _, err := f.store.RefreshTokens().Create(ctx, repository.CreateRefreshTokenInput{
		TenantID: "t1", UserID: "u1",
		TokenHash: tokens.SHA256Base64URL(plaintext), TTL: time.Hour,
	}); err != nil {
		t.Fatalf("refresh.Create: %v", err)
	}

	resp := svc.Introspect(ctx, dto.IntrospectRequest{Token: plaintext, TokenTypeHint: "refresh_token"})
	if !resp.Active || resp.TokenType != "refresh_token" || resp.Subject != "u1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// The hint is only an optimization: no hint still finds it.
	resp = svc.Introspect(ctx, dto.IntrospectRequest{Token: plaintext})
	if !resp.Active {
		t.Fatal("refresh token must introspect active without a hint")
	}
}

// Unknown, expired, revoked and garbage tokens must all produce the exact
// same body: active=false and not one more field.
func TestIntrospectNeverDisclosesWhyInactive(t *testing.T) {
	f := newTokenFixture(t)
	svc := NewIntrospectService(IntrospectDeps{Store: f.store, Signer: f.signer})
	ctx := context.Background()

	expiredAccess, _, err := f.signer.Issue(jwtClaims("u1", "t1", ""), -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	revoked, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		t.Fatalf("GenerateOpaqueToken: %v", err)
	}
	if _, err := f.store.RefreshTokens().Create(ctx, repository.CreateRefreshTokenInput{
		TenantID: "t1", UserID: "u1",
		TokenHash: tokens.SHA256Base64URL(revoked), TTL: time.Hour,
	}); err != nil {
		t.Fatalf("refresh.Create: %v", err)
	}
	if _, err := f.store.RefreshTokens().RevokeAll(ctx); err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}

	bare := dto.IntrospectResponse{Active: false}
	for name, token := range map[string]string{
		"expired access":  expiredAccess,
		"revoked refresh": revoked,
		"garbage":         "zzz-not-a-token",
		"empty":           "",
	} {
		resp := svc.Introspect(ctx, dto.IntrospectRequest{Token: token})
		if resp != bare {
			t.Fatalf("%s: inactive response leaks data: %+v", name, resp)
		}
	}
}
