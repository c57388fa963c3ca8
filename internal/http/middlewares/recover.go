package middlewares

import (
	"net/http"
	"runtime/debug"

	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// Recover convierte panics en server_error. Ningún panic cruza hacia el
// server; el stack va al log, nunca al cliente.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.From(r.Context()).Error("panic recovered",
					logger.String("panic", toString(rec)),
					logger.String("stack", string(debug.Stack())),
				)
				httperrors.WriteError(w, httperrors.ErrServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown panic"
}
