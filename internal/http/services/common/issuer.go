// Package common holds pieces shared by several services.
package common

import (
	"context"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
	"github.com/dropDatabas3/gatekeeper/internal/store"
)

// RequestMeta carries per-request client metadata for audit columns.
type RequestMeta struct {
	IP        string
	UserAgent string
	Host      string
}

// TokenIssuer is the single issuance path every grant ends in: one signed
// access token plus (optionally) one opaque refresh token, or nothing at all.
type TokenIssuer struct {
	Store      store.Store
	Signer     *jwtx.Signer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue signs an access token and creates a refresh token for the principal.
// The refresh plaintext leaves this function exactly once; only its hash is
// stored. A failure at any step issues nothing.
func (ti *TokenIssuer) Issue(ctx context.Context, tenantID, userID, scope string, meta RequestMeta) (*dto.TokenResponse, error) {
	start := time.Now()

	roles, err := ti.Store.Identities().GetRoles(ctx, tenantID, userID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	access, exp, err := ti.Signer.Issue(jwtx.Claims{
		Subject:  userID,
		TenantID: tenantID,
		Roles:    roles,
		Scope:    scope,
	}, ti.AccessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, err
	}
	if _, err := ti.Store.RefreshTokens().Create(ctx, repository.CreateRefreshTokenInput{
		TenantID:  tenantID,
		UserID:    userID,
		TokenHash: tokens.SHA256Base64URL(refresh),
		TTL:       ti.RefreshTTL,
		IssuedIP:  meta.IP,
		UserAgent: meta.UserAgent,
	}); err != nil {
		return nil, err
	}

	metrics.TokenIssueDuration.Observe(time.Since(start).Seconds())
	logger.From(ctx).Info("tokens issued",
		logger.Layer("service"),
		logger.TenantID(tenantID),
		logger.UserID(userID),
		logger.String("refresh_prefix", tokens.HashPrefix(refresh)))

	return &dto.TokenResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(exp).Seconds()),
		RefreshToken: refresh,
		Scope:        scope,
	}, nil
}

// IssueAccessOnly signs a new access token without touching refresh state.
// Used by the refresh path, which hands the caller back its own token.
func (ti *TokenIssuer) IssueAccessOnly(ctx context.Context, tenantID, userID, scope string) (*dto.TokenResponse, error) {
	roles, err := ti.Store.Identities().GetRoles(ctx, tenantID, userID)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	access, exp, err := ti.Signer.Issue(jwtx.Claims{
		Subject:  userID,
		TenantID: tenantID,
		Roles:    roles,
		Scope:    scope,
	}, ti.AccessTTL)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(exp).Seconds()),
		Scope:       scope,
	}, nil
}
