package repository

import "context"

// RateLimitConfig define el límite configurado para un endpoint.
type RateLimitConfig struct {
	EndpointKey   string // ej: "oauth.token", "mfa.verify"
	MaxRequests   int
	WindowSeconds int
	Enabled       bool
}

// RateLimitRepository define la lectura de configuración de rate limits.
// El CRUD vive fuera del core; los services leen a través de un cache de
// TTL corto (internal/rate).
type RateLimitRepository interface {
	// GetByEndpoint retorna la config para un endpoint key.
	// Retorna ErrNotFound si no hay config (el caller decide el default).
	GetByEndpoint(ctx context.Context, endpointKey string) (*RateLimitConfig, error)
}
