// Package health contains liveness and readiness controllers.
package health

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/gatekeeper/internal/http/helpers"
)

// Pinger reports backend connectivity. The pg store satisfies it; the
// memory store needs no ping and passes nil.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller handles /healthz and /readyz.
type Controller struct {
	db Pinger
}

// NewController creates the controller.
func NewController(db Pinger) *Controller {
	return &Controller{db: db}
}

// Healthz: process is up.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz: process can serve traffic (backend reachable).
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	if c.db != nil {
		if err := c.db.Ping(r.Context()); err != nil {
			helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
