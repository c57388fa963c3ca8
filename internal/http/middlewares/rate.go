package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/gatekeeper/internal/http/errors"
	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/rate"
)

// RateLimit aplica el límite configurado para endpointKey, por IP.
// Si el limiter es nil no limita (desarrollo sin redis).
func RateLimit(limiter *rate.Limiter, endpointKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			d, err := limiter.Allow(r.Context(), endpointKey, helpers.ClientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limit check failed", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				metrics.RateLimited.WithLabelValues(endpointKey).Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
