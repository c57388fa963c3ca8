package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	svc "github.com/dropDatabas3/gatekeeper/internal/http/services/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/store/memory"
)

func newRevokeHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	st := memory.New()
	c := NewRevokeController(svc.NewRevokeService(svc.RevokeDeps{Store: st}))

	r := chi.NewRouter()
	r.Post("/api/refresh-tokens/revoke-all", c.RevokeAll)
	r.Post("/api/refresh-tokens/revoke-for-tenant/{id}", c.RevokeForTenant)
	r.Post("/api/refresh-tokens/revoke-for-user/{id}", c.RevokeForUser)
	return r, st
}

func post(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func TestRevokeForUserUnknownTargetsAre404(t *testing.T) {
	h, st := newRevokeHandler(t)
	st.SeedTenant(repository.Tenant{ID: "t1", Name: "acme", Active: true})
	if err := st.SeedUser(memory.SeedUserInput{
		UserID: "u1", TenantID: "t1", Email: "alice@acme.test", Password: "pw", Active: true,
	}); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}

	for _, path := range []string{
		"/api/refresh-tokens/revoke-for-user/ghost?tenant_id=t1",
		"/api/refresh-tokens/revoke-for-user/u1?tenant_id=ghost",
	} {
		rec := post(t, h, path)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d (%s)", path, rec.Code, rec.Body.String())
		}
	}

	rec := post(t, h, "/api/refresh-tokens/revoke-for-tenant/ghost")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown tenant: expected 404, got %d", rec.Code)
	}
}

func TestRevokeForUserKnownTargetReportsCount(t *testing.T) {
	h, st := newRevokeHandler(t)
	st.SeedTenant(repository.Tenant{ID: "t1", Name: "acme", Active: true})
	if err := st.SeedUser(memory.SeedUserInput{
		UserID: "u1", TenantID: "t1", Email: "alice@acme.test", Password: "pw", Active: true,
	}); err != nil {
		t.Fatalf("SeedUser: %v", err)
	}

	// An existing user with no live tokens still answers 200 with a zero count.
	rec := post(t, h, "/api/refresh-tokens/revoke-for-user/u1?tenant_id=t1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		RevokedCount int    `json:"revokedCount"`
		Scope        string `json:"scope"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.RevokedCount != 0 || body.Scope != "user" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
