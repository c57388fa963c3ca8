// Package middlewares contains the HTTP middleware chain.
package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestContext inyecta un request id y un logger scoped en el contexto.
// Todos los logs aguas abajo salen con request_id, method y path.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)

		l := logger.L().With(
			logger.RequestID(rid),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(logger.ToContext(r.Context(), l)))
	})
}
