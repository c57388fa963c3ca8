package middlewares

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// AccessLog loguea cada request al terminar y alimenta el histograma de
// latencia HTTP. Nunca loguea bodies: los endpoints de este servicio llevan
// credenciales.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPDuration.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Observe(elapsed.Seconds())
		logger.From(r.Context()).Info("request",
			logger.Status(status),
			logger.Duration(elapsed),
			logger.ClientIP(helpers.ClientIP(r)),
			logger.UserAgent(r.UserAgent()),
		)
	})
}
