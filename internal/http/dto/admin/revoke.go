// Package admin contains DTOs for administrative endpoints.
package admin

// RevokeResponse reports the result of a bulk refresh-token revocation.
type RevokeResponse struct {
	RevokedCount int    `json:"revokedCount"`
	Scope        string `json:"scope"` // "all" | "tenant" | "user"
}
