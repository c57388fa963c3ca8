package oauth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// AuthorizeController handles GET/POST /oauth/authorize.
type AuthorizeController struct {
	service svc.AuthorizeService
}

// NewAuthorizeController creates the controller.
func NewAuthorizeController(s svc.AuthorizeService) *AuthorizeController {
	return &AuthorizeController{service: s}
}

// Authorize handles the authorization endpoint. GET starts the flow; POST
// carries the consent decision (approve=true|false).
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthorizeController.Authorize"))

	req, err := c.parseRequest(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("request could not be parsed"))
		return
	}

	meta := common.RequestMeta{
		IP:        helpers.ClientIP(r),
		UserAgent: r.UserAgent(),
		Host:      r.Host,
	}

	result, err := c.service.Authorize(ctx, req, helpers.BearerToken(r), meta)
	if err != nil {
		// Failures before redirect validation never redirect.
		switch {
		case errors.Is(err, svc.ErrMissingParams):
			httperrors.WriteError(w, httperrors.ErrInvalidRequest)
		case errors.Is(err, svc.ErrUnknownClient):
			httperrors.WriteError(w, httperrors.ErrInvalidClient)
		case errors.Is(err, svc.ErrInvalidRedirect):
			httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("redirect_uri is not registered for this client"))
		case errors.Is(err, svc.ErrNotAuthorized):
			httperrors.WriteError(w, httperrors.ErrAccessDenied.WithDescription("authentication required"))
		default:
			log.Error("authorize failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrServerError)
		}
		return
	}

	switch result.Type {
	case dto.AuthResultSuccess:
		loc := addQueryParam(result.RedirectURI, "code", result.Code)
		if result.State != "" {
			loc = addQueryParam(loc, "state", result.State)
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, loc, http.StatusFound)

	case dto.AuthResultConsentNeeded:
		helpers.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "consent_required",
			"consent": result.Consent,
		})

	case dto.AuthResultError:
		loc := addQueryParam(result.RedirectURI, "error", result.ErrorCode)
		if result.ErrorDescription != "" {
			loc = addQueryParam(loc, "error_description", result.ErrorDescription)
		}
		if result.State != "" {
			loc = addQueryParam(loc, "state", result.State)
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, loc, http.StatusFound)
	}
}

func (c *AuthorizeController) parseRequest(r *http.Request) (dto.AuthorizeRequest, error) {
	var get func(string) string
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return dto.AuthorizeRequest{}, err
		}
		get = func(k string) string { return strings.TrimSpace(r.PostForm.Get(k)) }
	} else {
		q := r.URL.Query()
		get = func(k string) string { return strings.TrimSpace(q.Get(k)) }
	}
	return dto.AuthorizeRequest{
		ResponseType:        get("response_type"),
		ClientID:            get("client_id"),
		RedirectURI:         get("redirect_uri"),
		Scope:               get("scope"),
		State:               get("state"),
		CodeChallenge:       get("code_challenge"),
		CodeChallengeMethod: get("code_challenge_method"),
		Approve:             get("approve"),
	}, nil
}

// addQueryParam appends a query parameter to a URL.
func addQueryParam(u, key, value string) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
