package oauth

// ValidateRequest for the JWT validation endpoint.
type ValidateRequest struct {
	Token string `json:"token"`
}

// ValidateResponse distinguishes "valid", "well-formed but expired" and
// "invalid". Claims are never returned.
type ValidateResponse struct {
	Valid   bool `json:"valid"`
	Expired bool `json:"expired"`
}
