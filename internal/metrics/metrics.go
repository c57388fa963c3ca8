// Package metrics expone los contadores e histogramas Prometheus del
// servidor de autorización.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GrantTotal cuenta requests al token endpoint por grant y resultado.
	GrantTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "grant_total",
		Help:      "Token endpoint requests by grant type and outcome.",
	}, []string{"grant_type", "outcome"})

	// IntrospectTotal cuenta introspecciones por resultado activo/inactivo.
	IntrospectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "introspect_total",
		Help:      "Introspection requests by active result.",
	}, []string{"active"})

	// TokenIssueDuration mide la latencia de emisión de tokens (firma + persistencia).
	TokenIssueDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gatekeeper",
		Name:      "token_issue_duration_seconds",
		Help:      "Latency of access+refresh token issuance.",
		Buckets:   prometheus.DefBuckets,
	})

	// RevokedTokens cuenta tokens revocados por operaciones bulk.
	RevokedTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "revoked_tokens_total",
		Help:      "Refresh tokens revoked by bulk operations.",
	}, []string{"scope"})

	// RateLimited cuenta requests rechazados por rate limiting.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatekeeper",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"endpoint"})

	// HTTPDuration mide latencia por ruta y status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gatekeeper",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// Outcomes para GrantTotal.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeMFARequired = "mfa_required"
	OutcomeError       = "error"
)
