package oauth

// AuthorizeRequest carries the parameters of the authorization endpoint.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
	Approve             string // "true"/"false" on the consent POST; empty on first pass
}

// AuthResult type discriminator.
const (
	AuthResultSuccess       = "success"
	AuthResultConsentNeeded = "consent_needed"
	AuthResultError         = "error"
)

// AuthResult is the outcome of the authorize flow.
// RedirectURI is set only when redirecting back to the client is safe
// (client known and redirect_uri registered).
type AuthResult struct {
	Type        string
	Code        string
	State       string
	RedirectURI string

	// Consent step data, when Type == AuthResultConsentNeeded.
	Consent *ConsentPrompt

	ErrorCode        string
	ErrorDescription string
}

// ConsentPrompt describes the approval the caller must render.
// The server does not render consent UI; clients do.
type ConsentPrompt struct {
	ClientID   string   `json:"client_id"`
	ClientName string   `json:"client_name"`
	Scopes     []string `json:"scopes"`
}
