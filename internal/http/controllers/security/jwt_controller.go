// Package security contains controllers for token validation endpoints.
package security

import (
	"net/http"
	"strings"
	"time"

	dto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
)

// JWTController handles POST /jwt/validate.
type JWTController struct {
	signer *jwtx.Signer
}

// NewJWTController creates the controller.
func NewJWTController(signer *jwtx.Signer) *JWTController {
	return &JWTController{signer: signer}
}

// Validate answers {valid, expired} and never returns claims. A well-formed
// but expired token reports expired=true; anything else is just invalid.
func (c *JWTController) Validate(w http.ResponseWriter, r *http.Request) {
	values, err := helpers.DecodeBody(r)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("request body could not be parsed"))
		return
	}
	token := strings.TrimSpace(values["token"])
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidRequest.WithDescription("token is required"))
		return
	}

	claims, err := c.signer.Validate(token, true)
	if err != nil {
		helpers.WriteJSON(w, http.StatusOK, dto.ValidateResponse{Valid: false, Expired: false})
		return
	}
	if claims.ExpiredAt(time.Now().UTC()) {
		helpers.WriteJSON(w, http.StatusOK, dto.ValidateResponse{Valid: false, Expired: true})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ValidateResponse{Valid: true, Expired: false})
}
