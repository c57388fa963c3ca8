// Package auth contains DTOs for authentication endpoints.
package auth

// MFAVerifyRequest redeems a challenge token with a TOTP code.
type MFAVerifyRequest struct {
	ChallengeToken string `json:"challengeToken"`
	Code           string `json:"code"`
}

// MFABackupRequest redeems a challenge token with a backup code.
type MFABackupRequest struct {
	ChallengeToken string `json:"challengeToken"`
	BackupCode     string `json:"backupCode"`
}
