// Package oidc contains controllers for the OIDC metadata endpoints.
package oidc

import (
	"net/http"

	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
)

// JWKSController serves GET /.well-known/jwks.json.
type JWKSController struct {
	keys *jwtx.KeySet
}

// NewJWKSController creates the controller.
func NewJWKSController(keys *jwtx.KeySet) *JWKSController {
	return &JWKSController{keys: keys}
}

// JWKS publishes the active public signing key.
func (c *JWKSController) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.keys.JWKSJSON())
}
