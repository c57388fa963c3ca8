package oauth

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
	"github.com/dropDatabas3/gatekeeper/internal/store"
)

// IntrospectService answers RFC 7662 introspection queries.
type IntrospectService interface {
	Introspect(ctx context.Context, req dto.IntrospectRequest) dto.IntrospectResponse
}

// IntrospectDeps contains dependencies for IntrospectService.
type IntrospectDeps struct {
	Store  store.Store
	Signer *jwtx.Signer
}

type introspectService struct {
	store  store.Store
	signer *jwtx.Signer
}

// NewIntrospectService creates an IntrospectService.
func NewIntrospectService(d IntrospectDeps) IntrospectService {
	return &introspectService{store: d.Store, signer: d.Signer}
}

// Introspect tries the access-token interpretation first unless the hint
// says refresh_token. An inactive result carries active:false and NOTHING
// else — unknown, expired, revoked and malformed are indistinguishable.
func (s *introspectService) Introspect(ctx context.Context, req dto.IntrospectRequest) dto.IntrospectResponse {
	resp := s.introspect(ctx, req)
	if resp.Active {
		metrics.IntrospectTotal.WithLabelValues("true").Inc()
	} else {
		metrics.IntrospectTotal.WithLabelValues("false").Inc()
	}
	return resp
}

func (s *introspectService) introspect(ctx context.Context, req dto.IntrospectRequest) dto.IntrospectResponse {
	inactive := dto.IntrospectResponse{Active: false}
	if req.Token == "" {
		return inactive
	}
	now := time.Now().UTC()

	if req.TokenTypeHint != "refresh_token" {
		if claims, err := s.signer.Validate(req.Token, true); err == nil && !claims.ExpiredAt(now) {
			return dto.IntrospectResponse{
				Active:    true,
				Scope:     claims.Scope,
				Subject:   claims.Subject,
				TenantID:  claims.TenantID,
				TokenType: "Bearer",
				ExpiresAt: claims.ExpiresAt.Unix(),
				IssuedAt:  claims.IssuedAt.Unix(),
				Issuer:    s.signer.Iss,
			}
		}
	}

	rt, err := s.store.RefreshTokens().GetByHash(ctx, tokens.SHA256Base64URL(req.Token))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.From(ctx).Error("introspection lookup failed",
				logger.Layer("service"), logger.Op("IntrospectService.Introspect"), logger.Err(err))
		}
		return inactive
	}
	if rt.Revoked || !now.Before(rt.ExpiresAt) {
		return inactive
	}

	return dto.IntrospectResponse{
		Active:    true,
		Subject:   rt.UserID,
		TenantID:  rt.TenantID,
		TokenType: "refresh_token",
		ExpiresAt: rt.ExpiresAt.Unix(),
		IssuedAt:  rt.IssuedAt.Unix(),
		Issuer:    s.signer.Iss,
	}
}
