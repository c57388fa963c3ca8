// Package admin contains controllers for administrative endpoints.
package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// RevokeController handles the bulk refresh-token revocation endpoints.
type RevokeController struct {
	service svc.RevokeService
}

// NewRevokeController creates the controller.
func NewRevokeController(s svc.RevokeService) *RevokeController {
	return &RevokeController{service: s}
}

// RevokeAll handles POST /api/refresh-tokens/revoke-all.
func (c *RevokeController) RevokeAll(w http.ResponseWriter, r *http.Request) {
	n, err := c.service.RevokeAll(r.Context())
	c.respond(w, r, n, "all", err)
}

// RevokeForTenant handles POST /api/refresh-tokens/revoke-for-tenant/{id}.
func (c *RevokeController) RevokeForTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "id")
	if tenantID == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("tenant id is required"))
		return
	}
	n, err := c.service.RevokeForTenant(r.Context(), tenantID)
	c.respond(w, r, n, "tenant", err)
}

// RevokeForUser handles POST /api/refresh-tokens/revoke-for-user/{id}.
// The tenant comes from the caller's own token context via query param.
func (c *RevokeController) RevokeForUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	tenantID := r.URL.Query().Get("tenant_id")
	if userID == "" || tenantID == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("user id and tenant_id are required"))
		return
	}
	n, err := c.service.RevokeForUser(r.Context(), tenantID, userID)
	c.respond(w, r, n, "user", err)
}

func (c *RevokeController) respond(w http.ResponseWriter, r *http.Request, n int, scope string, err error) {
	if err != nil {
		if errors.Is(err, svc.ErrUnknownTenant) || errors.Is(err, svc.ErrUnknownUser) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDescription(err.Error()))
			return
		}
		logger.From(r.Context()).Error("bulk revocation failed",
			logger.Layer("controller"), logger.Op("RevokeController"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServerError)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.RevokeResponse{RevokedCount: n, Scope: scope})
}
