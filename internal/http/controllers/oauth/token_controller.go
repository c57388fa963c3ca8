// Package oauth contains controllers for the OAuth2 endpoints.
package oauth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// TokenController handles POST /oauth/token and POST /oauth/refresh.
type TokenController struct {
	service svc.TokenService
}

// NewTokenController creates the controller.
func NewTokenController(s svc.TokenService) *TokenController {
	return &TokenController{service: s}
}

// Token handles POST /oauth/token.
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, "")
}

// Refresh handles POST /oauth/refresh: the token endpoint with the grant
// type pinned to refresh_token.
func (c *TokenController) Refresh(w http.ResponseWriter, r *http.Request) {
	c.handle(w, r, "refresh_token")
}

func (c *TokenController) handle(w http.ResponseWriter, r *http.Request, forceGrant string) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TokenController.Token"))

	values, err := helpers.DecodeBody(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("request body could not be parsed"))
		return
	}
	req := dto.TokenRequestFromValues(values)
	if forceGrant != "" {
		req.GrantType = forceGrant
	}

	meta := common.RequestMeta{
		IP:        helpers.ClientIP(r),
		UserAgent: r.UserAgent(),
		Host:      r.Host,
	}

	out, err := c.service.Token(ctx, req, meta)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidRequest):
			httperrors.WriteError(w, httperrors.ErrInvalidRequest)
		case errors.Is(err, svc.ErrUnsupportedGrant):
			httperrors.WriteError(w, httperrors.ErrUnsupportedGrantType)
		case errors.Is(err, svc.ErrInvalidClient):
			httperrors.WriteError(w, httperrors.ErrInvalidClient)
		case errors.Is(err, svc.ErrInvalidGrant), errors.Is(err, svc.ErrTenantUnresolved):
			httperrors.WriteError(w, httperrors.ErrInvalidGrant)
		default:
			log.Error("token request failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrServerError)
		}
		return
	}

	if out.MFAToken != "" {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		httperrors.WriteErrorExtra(w, httperrors.ErrMFARequired, map[string]string{
			"mfa_token": out.MFAToken,
		})
		return
	}

	helpers.WriteJSONNoStore(w, http.StatusOK, out.Tokens)
}
