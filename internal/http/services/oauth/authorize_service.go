package oauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/events"
	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
	"github.com/dropDatabas3/gatekeeper/internal/store"
)

// Errors surfaced before redirect validation. After the redirect URI is
// validated, failures travel back to the client inside the redirect instead.
var (
	ErrMissingParams   = errors.New("missing required authorize parameters")
	ErrUnknownClient   = errors.New("client not found or inactive")
	ErrInvalidRedirect = errors.New("redirect_uri not registered for client")
	ErrNotAuthorized   = errors.New("caller is not authenticated")
)

const (
	authCodeTTL   = 5 * time.Minute
	consentWindow = 90 * 24 * time.Hour
)

// AuthorizeService handles the interactive authorization sub-flow.
type AuthorizeService interface {
	Authorize(ctx context.Context, req dto.AuthorizeRequest, bearer string, meta common.RequestMeta) (dto.AuthResult, error)
}

// AuthorizeDeps contains dependencies for AuthorizeService.
type AuthorizeDeps struct {
	Store  store.Store
	Signer *jwtx.Signer
	Events events.Publisher
}

type authorizeService struct {
	store  store.Store
	signer *jwtx.Signer
	events events.Publisher
}

// NewAuthorizeService creates an AuthorizeService.
func NewAuthorizeService(d AuthorizeDeps) AuthorizeService {
	ev := d.Events
	if ev == nil {
		ev = events.Noop{}
	}
	return &authorizeService{store: d.Store, signer: d.Signer, events: ev}
}

// Authorize validates the request, authenticates the caller from its bearer
// token, and either issues a code silently (prior usable consent covering
// the scopes), asks for consent, or reports denial.
func (s *authorizeService) Authorize(ctx context.Context, req dto.AuthorizeRequest, bearer string, meta common.RequestMeta) (dto.AuthResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("AuthorizeService.Authorize"))

	if req.ClientID == "" || req.RedirectURI == "" {
		return dto.AuthResult{}, ErrMissingParams
	}

	client, err := s.store.Clients().GetByClientID(ctx, req.ClientID)
	if errors.Is(err, repository.ErrNotFound) {
		return dto.AuthResult{}, ErrUnknownClient
	}
	if err != nil {
		return dto.AuthResult{}, err
	}
	if !client.Active {
		return dto.AuthResult{}, ErrUnknownClient
	}
	// Redirecting anywhere not registered is never safe, so this check comes
	// before any redirect-borne error.
	if !client.AllowsRedirectURI(req.RedirectURI) {
		return dto.AuthResult{}, ErrInvalidRedirect
	}

	redirectErr := func(code, desc string) dto.AuthResult {
		return dto.AuthResult{
			Type:             dto.AuthResultError,
			RedirectURI:      req.RedirectURI,
			State:            req.State,
			ErrorCode:        code,
			ErrorDescription: desc,
		}
	}

	if req.ResponseType != "code" {
		return redirectErr("unsupported_response_type", "only response_type=code is supported"), nil
	}
	if req.CodeChallenge != "" &&
		req.CodeChallengeMethod != repository.PKCEMethodS256 &&
		req.CodeChallengeMethod != repository.PKCEMethodPlain {
		return redirectErr("invalid_request", "unsupported code_challenge_method"), nil
	}

	claims, err := s.signer.Validate(bearer, true)
	if err != nil || claims.ExpiredAt(time.Now().UTC()) {
		return dto.AuthResult{}, ErrNotAuthorized
	}
	if !client.VisibleToTenant(claims.TenantID) {
		return dto.AuthResult{}, ErrUnknownClient
	}

	userID, tenantID := claims.Subject, claims.TenantID
	scopes := strings.Fields(req.Scope)

	switch req.Approve {
	case "", "true":
	case "false":
		log.Info("consent denied", logger.ClientID(req.ClientID), logger.UserID(userID))
		return redirectErr("access_denied", "the resource owner denied the request"), nil
	default:
		// Anything else is a malformed decision, never an approval.
		return redirectErr("invalid_request", "approve must be \"true\" or \"false\""), nil
	}

	now := time.Now().UTC()
	if req.Approve == "" {
		consent, err := s.store.Consents().Get(ctx, tenantID, userID, req.ClientID)
		switch {
		case err == nil && consent.UsableAt(now, consentWindow) && consent.CoversScopes(scopes):
			// Silent re-authorization.
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return dto.AuthResult{}, err
		default:
			return dto.AuthResult{
				Type: dto.AuthResultConsentNeeded,
				Consent: &dto.ConsentPrompt{
					ClientID:   client.ClientID,
					ClientName: client.Name,
					Scopes:     scopes,
				},
			}, nil
		}
	} else {
		if _, err := s.store.Consents().Upsert(ctx, tenantID, userID, req.ClientID, scopes, nil); err != nil {
			return dto.AuthResult{}, err
		}
		s.events.Publish(ctx, events.Event{
			Type: events.TypeConsentGranted, TenantID: tenantID, UserID: userID, ClientID: req.ClientID,
		})
	}

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return dto.AuthResult{}, err
	}
	if _, err := s.store.AuthorizationCodes().Create(ctx, repository.CreateAuthorizationCodeInput{
		CodeHash:        tokens.SHA256Base64URL(code),
		UserID:          userID,
		TenantID:        tenantID,
		ClientID:        req.ClientID,
		RedirectURI:     req.RedirectURI,
		Scope:           req.Scope,
		CodeChallenge:   req.CodeChallenge,
		ChallengeMethod: req.CodeChallengeMethod,
		TTL:             authCodeTTL,
		IssuedIP:        meta.IP,
		UserAgent:       meta.UserAgent,
	}); err != nil {
		return dto.AuthResult{}, err
	}

	log.Info("authorization code issued",
		logger.TenantID(tenantID), logger.UserID(userID), logger.ClientID(req.ClientID),
		logger.String("code_prefix", tokens.HashPrefix(code)))
	s.events.Publish(ctx, events.Event{
		Type: events.TypeCodeIssued, TenantID: tenantID, UserID: userID, ClientID: req.ClientID,
	})

	return dto.AuthResult{
		Type:        dto.AuthResultSuccess,
		Code:        code,
		State:       req.State,
		RedirectURI: req.RedirectURI,
	}, nil
}
