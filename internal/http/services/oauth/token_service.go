// Package oauth contains services for the OAuth2 endpoints.
package oauth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/events"
	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
	"github.com/dropDatabas3/gatekeeper/internal/store"
	"github.com/dropDatabas3/gatekeeper/internal/tenant"
)

// Sentinel errors for the token endpoint. The controller maps them to wire
// codes; anything else becomes server_error.
var (
	ErrInvalidRequest   = errors.New("malformed or incomplete token request")
	ErrUnsupportedGrant = errors.New("unsupported grant type")
	ErrInvalidClient    = errors.New("client authentication failed")
	ErrInvalidGrant     = errors.New("invalid grant")
	ErrTenantUnresolved = errors.New("tenant could not be resolved")
)

const mfaChallengeTTL = 5 * time.Minute

// TokenOutcome is the result of a token request: either a token pair, or a
// pending MFA challenge. Exactly one of the two is set on success.
type TokenOutcome struct {
	Tokens   *dto.TokenResponse
	MFAToken string
}

// TokenService dispatches token requests by grant type.
type TokenService interface {
	Token(ctx context.Context, req dto.TokenRequest, meta common.RequestMeta) (TokenOutcome, error)
}

// TokenDeps contains dependencies for TokenService.
type TokenDeps struct {
	Store    store.Store
	Resolver *tenant.Resolver
	Issuer   *common.TokenIssuer
	Events   events.Publisher
}

type tokenService struct {
	store    store.Store
	resolver *tenant.Resolver
	issuer   *common.TokenIssuer
	events   events.Publisher
}

// NewTokenService creates a TokenService.
func NewTokenService(d TokenDeps) TokenService {
	ev := d.Events
	if ev == nil {
		ev = events.Noop{}
	}
	return &tokenService{
		store:    d.Store,
		resolver: d.Resolver,
		issuer:   d.Issuer,
		events:   ev,
	}
}

// Token is the grant-dispatch state machine. Malformed requests and unknown
// grant types fail before touching any store; any later miss or mismatch
// fails the whole request with no partial issuance.
func (s *tokenService) Token(ctx context.Context, req dto.TokenRequest, meta common.RequestMeta) (TokenOutcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.Token"), logger.GrantType(req.GrantType))

	var out TokenOutcome
	var err error

	switch req.GrantType {
	case "":
		err = ErrInvalidRequest
	case "password":
		out, err = s.passwordGrant(ctx, req, meta)
	case "authorization_code":
		out, err = s.authorizationCodeGrant(ctx, req, meta)
	case "refresh_token":
		out, err = s.refreshGrant(ctx, req, meta)
	default:
		err = ErrUnsupportedGrant
	}

	switch {
	case err != nil:
		if errors.Is(err, ErrInvalidGrant) || errors.Is(err, ErrInvalidClient) ||
			errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrTenantUnresolved) ||
			errors.Is(err, ErrUnsupportedGrant) {
			metrics.GrantTotal.WithLabelValues(req.GrantType, metrics.OutcomeInvalid).Inc()
			log.Debug("grant rejected", logger.Err(err))
		} else {
			metrics.GrantTotal.WithLabelValues(req.GrantType, metrics.OutcomeError).Inc()
			log.Error("grant failed", logger.Err(err))
		}
	case out.MFAToken != "":
		metrics.GrantTotal.WithLabelValues(req.GrantType, metrics.OutcomeMFARequired).Inc()
	default:
		metrics.GrantTotal.WithLabelValues(req.GrantType, metrics.OutcomeSuccess).Inc()
	}
	return out, err
}

// passwordGrant: resolve tenant, verify credentials, interrupt for MFA when
// the account requires a second factor.
func (s *tokenService) passwordGrant(ctx context.Context, req dto.TokenRequest, meta common.RequestMeta) (TokenOutcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.passwordGrant"))

	if req.Username == "" || req.Password == "" {
		return TokenOutcome{}, ErrInvalidRequest
	}

	tenantID, err := s.resolveTenant(ctx, req, meta)
	if err != nil {
		return TokenOutcome{}, err
	}

	principal, err := s.store.Identities().VerifyCredential(ctx, tenantID, req.Username, req.Password)
	if errors.Is(err, repository.ErrNotFound) {
		s.events.Publish(ctx, events.Event{Type: events.TypeLoginFailed, TenantID: tenantID})
		return TokenOutcome{}, ErrInvalidGrant
	}
	if err != nil {
		return TokenOutcome{}, err
	}
	if !principal.Active {
		return TokenOutcome{}, ErrInvalidGrant
	}

	if principal.MFAEnabled {
		plaintext, err := tokens.GenerateOpaqueToken(32)
		if err != nil {
			return TokenOutcome{}, err
		}
		if _, err := s.store.MFAChallenges().Create(ctx, repository.CreateMFAChallengeInput{
			SecretHash: tokens.SHA256Base64URL(plaintext),
			UserID:     principal.UserID,
			TenantID:   tenantID,
			TTL:        mfaChallengeTTL,
			IssuedIP:   meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			return TokenOutcome{}, err
		}
		log.Info("mfa challenge issued",
			logger.TenantID(tenantID), logger.UserID(principal.UserID),
			logger.String("challenge_prefix", tokens.HashPrefix(plaintext)))
		s.events.Publish(ctx, events.Event{
			Type: events.TypeMFAChallenged, TenantID: tenantID, UserID: principal.UserID,
		})
		return TokenOutcome{MFAToken: plaintext}, nil
	}

	resp, err := s.issuer.Issue(ctx, tenantID, principal.UserID, req.Scope, meta)
	if err != nil {
		return TokenOutcome{}, err
	}
	s.events.Publish(ctx, events.Event{
		Type: events.TypeTokenIssued, TenantID: tenantID, UserID: principal.UserID,
		Attributes: map[string]string{"grant_type": "password"},
	})
	return TokenOutcome{Tokens: resp}, nil
}

// authorizationCodeGrant: authenticate the client when confidential, consume
// the code atomically, then re-check every binding before issuing.
func (s *tokenService) authorizationCodeGrant(ctx context.Context, req dto.TokenRequest, meta common.RequestMeta) (TokenOutcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.authorizationCodeGrant"))

	if req.Code == "" || req.ClientID == "" || req.RedirectURI == "" {
		return TokenOutcome{}, ErrInvalidRequest
	}

	client, err := s.store.Clients().GetByClientID(ctx, req.ClientID)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenOutcome{}, ErrInvalidClient
	}
	if err != nil {
		return TokenOutcome{}, err
	}
	if !client.Active {
		return TokenOutcome{}, ErrInvalidClient
	}
	if client.Confidential && !secretMatches(client.SecretHash, req.ClientSecret) {
		return TokenOutcome{}, ErrInvalidClient
	}

	code, err := s.store.AuthorizationCodes().Consume(ctx, tokens.SHA256Base64URL(req.Code))
	if err != nil {
		if errors.Is(err, repository.ErrConsumed) {
			log.Warn("authorization code replay blocked",
				logger.ClientID(req.ClientID),
				logger.String("code_prefix", tokens.HashPrefix(req.Code)))
			s.events.Publish(ctx, events.Event{Type: events.TypeCodeReuseBlocked, ClientID: req.ClientID})
		}
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConsumed) || errors.Is(err, repository.ErrExpired) {
			return TokenOutcome{}, ErrInvalidGrant
		}
		return TokenOutcome{}, err
	}

	// Bindings must match exactly what was issued.
	if code.ClientID != req.ClientID || code.RedirectURI != req.RedirectURI {
		return TokenOutcome{}, ErrInvalidGrant
	}
	if !verifyPKCE(code.CodeChallenge, code.ChallengeMethod, req.CodeVerifier) {
		return TokenOutcome{}, ErrInvalidGrant
	}

	resp, err := s.issuer.Issue(ctx, code.TenantID, code.UserID, code.Scope, meta)
	if err != nil {
		return TokenOutcome{}, err
	}
	s.events.Publish(ctx, events.Event{
		Type: events.TypeTokenIssued, TenantID: code.TenantID, UserID: code.UserID, ClientID: req.ClientID,
		Attributes: map[string]string{"grant_type": "authorization_code"},
	})
	return TokenOutcome{Tokens: resp}, nil
}

// refreshGrant: validate the opaque token, re-check the account, and issue a
// fresh access token. The refresh token is returned unchanged — it stays
// valid until expiry or explicit revocation, never rotated on use.
func (s *tokenService) refreshGrant(ctx context.Context, req dto.TokenRequest, meta common.RequestMeta) (TokenOutcome, error) {
	if req.RefreshToken == "" {
		return TokenOutcome{}, ErrInvalidRequest
	}

	rt, err := s.store.RefreshTokens().GetByHash(ctx, tokens.SHA256Base64URL(req.RefreshToken))
	if errors.Is(err, repository.ErrNotFound) {
		return TokenOutcome{}, ErrInvalidGrant
	}
	if err != nil {
		return TokenOutcome{}, err
	}
	now := time.Now().UTC()
	if rt.Revoked || !now.Before(rt.ExpiresAt) {
		return TokenOutcome{}, ErrInvalidGrant
	}

	principal, err := s.store.Identities().GetPrincipal(ctx, rt.TenantID, rt.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return TokenOutcome{}, ErrInvalidGrant
	}
	if err != nil {
		return TokenOutcome{}, err
	}
	if !principal.Active {
		return TokenOutcome{}, ErrInvalidGrant
	}

	resp, err := s.issuer.IssueAccessOnly(ctx, rt.TenantID, rt.UserID, req.Scope)
	if err != nil {
		return TokenOutcome{}, err
	}
	resp.RefreshToken = req.RefreshToken

	s.events.Publish(ctx, events.Event{
		Type: events.TypeTokenRefreshed, TenantID: rt.TenantID, UserID: rt.UserID,
	})
	return TokenOutcome{Tokens: resp}, nil
}

// resolveTenant: explicit tenant_id wins; otherwise derive from the email
// domain of the username, then from the request host.
func (s *tokenService) resolveTenant(ctx context.Context, req dto.TokenRequest, meta common.RequestMeta) (string, error) {
	if req.TenantID != "" {
		t, err := s.store.Tenants().GetByID(ctx, req.TenantID)
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTenantUnresolved
		}
		if err != nil {
			return "", err
		}
		if !t.Active {
			return "", ErrTenantUnresolved
		}
		return t.ID, nil
	}

	if id, err := s.resolver.ResolveEmail(ctx, req.Username); err == nil {
		return id, nil
	}
	if meta.Host != "" {
		if id, err := s.resolver.ResolveHost(ctx, meta.Host); err == nil {
			return id, nil
		}
	}
	return "", ErrTenantUnresolved
}

// secretMatches compares a stored SHA-256 hash against a presented secret in
// constant time.
func secretMatches(storedHash, presented string) bool {
	if storedHash == "" || presented == "" {
		return false
	}
	computed := tokens.SHA256Base64URL(presented)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}

// verifyPKCE recomputes the challenge from the verifier. Codes issued with
// no challenge skip PKCE entirely.
func verifyPKCE(challenge, method, verifier string) bool {
	if challenge == "" {
		return true
	}
	if verifier == "" {
		return false
	}
	switch method {
	case repository.PKCEMethodS256:
		sum := sha256.Sum256([]byte(verifier))
		computed := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(computed)) == 1
	case repository.PKCEMethodPlain:
		return subtle.ConstantTimeCompare([]byte(challenge), []byte(verifier)) == 1
	default:
		return false
	}
}
