package oidc

import (
	"net/http"

	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
)

// DiscoveryController serves GET /.well-known/openid-configuration.
type DiscoveryController struct {
	issuer string
}

// NewDiscoveryController creates the controller. issuer is the public base
// URL of this server.
func NewDiscoveryController(issuer string) *DiscoveryController {
	return &DiscoveryController{issuer: issuer}
}

// Discovery publishes the server metadata document.
func (c *DiscoveryController) Discovery(w http.ResponseWriter, r *http.Request) {
	doc := map[string]any{
		"issuer":                                c.issuer,
		"authorization_endpoint":                c.issuer + "/oauth/authorize",
		"token_endpoint":                        c.issuer + "/oauth/token",
		"introspection_endpoint":                c.issuer + "/oauth/introspect",
		"jwks_uri":                              c.issuer + "/.well-known/jwks.json",
		"grant_types_supported":                 []string{"password", "authorization_code", "refresh_token"},
		"response_types_supported":              []string{"code"},
		"code_challenge_methods_supported":      []string{"S256", "plain"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_post", "none"},
		"id_token_signing_alg_values_supported": []string{"EdDSA"},
		"scopes_supported":                      []string{"openid", "profile", "email", "offline_access"},
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	helpers.WriteJSON(w, http.StatusOK, doc)
}
