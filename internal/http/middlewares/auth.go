package middlewares

import (
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
)

// RequireRole protege rutas administrativas: exige un bearer token válido,
// no expirado y con el rol indicado. Violación de scope responde 403.
func RequireRole(signer *jwtx.Signer, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := helpers.BearerToken(r)
			if token == "" {
				httperrors.WriteError(w, httperrors.ErrAccessDenied.WithDescription("authentication required"))
				return
			}

			claims, err := signer.Validate(token, true)
			if err != nil || claims.ExpiredAt(time.Now().UTC()) {
				httperrors.WriteError(w, httperrors.ErrAccessDenied.WithDescription("invalid or expired token"))
				return
			}

			for _, have := range claims.Roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httperrors.WriteError(w, httperrors.ErrAccessDenied.WithDescription("insufficient role"))
		})
	}
}
