// Package events publica eventos de seguridad (logins, revocaciones,
// consumos de tokens) para consumidores externos. La publicación es
// fire-and-forget: una falla se loguea y nunca afecta el request.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Tipos de evento publicados.
const (
	TypeTokenIssued      = "token.issued"
	TypeTokenRefreshed   = "token.refreshed"
	TypeTokensRevoked    = "tokens.revoked"
	TypeLoginFailed      = "login.failed"
	TypeMFAChallenged    = "mfa.challenged"
	TypeMFAVerified      = "mfa.verified"
	TypeConsentGranted   = "consent.granted"
	TypeCodeIssued       = "code.issued"
	TypeCodeReuseBlocked = "code.reuse_blocked"
)

// Event es el sobre común de todos los eventos. Nunca lleva plaintexts de
// tokens ni passwords; los identificadores de token van como hash prefix.
type Event struct {
	Type       string            `json:"type"`
	TenantID   string            `json:"tenant_id,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	ClientID   string            `json:"client_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Marshal serializa el evento para el wire.
func (e Event) Marshal() ([]byte, error) { return json.Marshal(e) }

// Publisher publica eventos. Las implementaciones no deben bloquear más allá
// del deadline del context y nunca retornan el error al caller del grant.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Noop descarta todos los eventos. Default cuando no hay redis configurado.
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
