// Package router arma el árbol de rutas del servidor.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/oauth"
	oidcctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/oidc"
	securityctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/security"
	mw "github.com/dropDatabas3/gatekeeper/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/rate"
)

// Deps contiene todo lo que el router necesita para registrar rutas.
type Deps struct {
	Token      *oauthctrl.TokenController
	Authorize  *oauthctrl.AuthorizeController
	Introspect *oauthctrl.IntrospectController
	MFA        *authctrl.MFAController
	Revoke     *adminctrl.RevokeController
	JWT        *securityctrl.JWTController
	JWKS       *oidcctrl.JWKSController
	Discovery  *oidcctrl.DiscoveryController
	Health     *healthctrl.Controller

	Signer    *jwtx.Signer
	Limiter   *rate.Limiter // nil deshabilita rate limiting
	AdminRole string        // default "admin"
}

// New construye el router con la cadena de middlewares estándar.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestContext)
	r.Use(mw.Recover)
	r.Use(mw.AccessLog)

	adminRole := d.AdminRole
	if adminRole == "" {
		adminRole = "admin"
	}

	// OAuth2 core
	r.Route("/oauth", func(r chi.Router) {
		r.With(mw.RateLimit(d.Limiter, "oauth_token")).Post("/token", d.Token.Token)
		r.With(mw.RateLimit(d.Limiter, "oauth_token")).Post("/refresh", d.Token.Refresh)
		r.With(mw.RateLimit(d.Limiter, "oauth_authorize")).Get("/authorize", d.Authorize.Authorize)
		r.With(mw.RateLimit(d.Limiter, "oauth_authorize")).Post("/authorize", d.Authorize.Authorize)
		r.With(mw.RateLimit(d.Limiter, "oauth_introspect")).Post("/introspect", d.Introspect.Introspect)
	})

	// Validación de JWT para resource servers internos
	r.Post("/jwt/validate", d.JWT.Validate)

	// Metadata OIDC
	r.Get("/.well-known/jwks.json", d.JWKS.JWKS)
	r.Get("/.well-known/openid-configuration", d.Discovery.Discovery)

	// MFA (completa el password grant interrumpido)
	r.Route("/api/mfa", func(r chi.Router) {
		r.Use(mw.RateLimit(d.Limiter, "mfa_verify"))
		r.Post("/verify", d.MFA.Verify)
		r.Post("/verify-backup-code", d.MFA.VerifyBackupCode)
	})

	// Revocación masiva (solo admin)
	r.Route("/api/refresh-tokens", func(r chi.Router) {
		r.Use(mw.RequireRole(d.Signer, adminRole))
		r.Post("/revoke-all", d.Revoke.RevokeAll)
		r.Post("/revoke-for-tenant/{id}", d.Revoke.RevokeForTenant)
		r.Post("/revoke-for-user/{id}", d.Revoke.RevokeForUser)
	})

	// Observabilidad
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
