package oauth

import (
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/oauth"
)

// IntrospectController handles POST /oauth/introspect.
type IntrospectController struct {
	service svc.IntrospectService
}

// NewIntrospectController creates the controller.
func NewIntrospectController(s svc.IntrospectService) *IntrospectController {
	return &IntrospectController{service: s}
}

// Introspect always answers 200 with a boolean status: an unknown token is
// {"active":false}, never an error, so callers learn nothing extra.
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	values, err := helpers.DecodeBody(r)
	if err != nil {
		helpers.WriteJSONNoStore(w, http.StatusOK, dto.IntrospectResponse{Active: false})
		return
	}

	resp := c.service.Introspect(r.Context(), dto.IntrospectRequest{
		Token:         strings.TrimSpace(values["token"]),
		TokenTypeHint: strings.TrimSpace(values["token_type_hint"]),
	})
	helpers.WriteJSONNoStore(w, http.StatusOK, resp)
}
