// Package oauth contains request/response DTOs for OAuth2 endpoints.
package oauth

import "strings"

// TokenRequest carries every field the token endpoint accepts, across all
// grant types. Grant-specific validation happens in the service.
type TokenRequest struct {
	GrantType string `json:"grant_type"`

	// password grant
	TenantID string `json:"tenant_id,omitempty"` // explicit tenant, else resolved
	Username string `json:"username,omitempty"`  // name or email
	Password string `json:"password,omitempty"`
	Scope    string `json:"scope,omitempty"`

	// authorization_code grant
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	CodeVerifier string `json:"code_verifier,omitempty"`

	// refresh_token grant
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenRequestFromValues builds a TokenRequest from decoded form/JSON values.
func TokenRequestFromValues(v map[string]string) TokenRequest {
	get := func(k string) string { return strings.TrimSpace(v[k]) }
	return TokenRequest{
		GrantType:    get("grant_type"),
		TenantID:     get("tenant_id"),
		Username:     get("username"),
		Password:     v["password"], // passwords keep surrounding whitespace
		Scope:        get("scope"),
		Code:         get("code"),
		RedirectURI:  get("redirect_uri"),
		ClientID:     get("client_id"),
		ClientSecret: v["client_secret"],
		CodeVerifier: get("code_verifier"),
		RefreshToken: get("refresh_token"),
	}
}

// TokenResponse is the successful token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
