package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":8080" || c.Storage.Driver != "memory" || c.Cache.Kind != "memory" {
		t.Fatalf("defaults inesperados: %+v", c)
	}
	if c.AccessTTL() != 15*time.Minute || c.RefreshTTL() != 720*time.Hour {
		t.Fatalf("TTLs por defecto inesperados: %v / %v", c.AccessTTL(), c.RefreshTTL())
	}
	if c.Admin.Role != "admin" || c.JWT.Audience != "gatekeeper" {
		t.Fatalf("defaults inesperados: %+v", c)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeYAML(t, `
app:
  env: prod
  name: gatekeeper
server:
  addr: ":9090"
storage:
  driver: postgres
  dsn: postgres://gk:gk@localhost/gk
jwt:
  issuer: https://auth.example.com
  access_ttl: 5m
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "prod" || c.Server.Addr != ":9090" {
		t.Fatalf("YAML no aplicado: %+v", c)
	}
	if c.JWT.Issuer != "https://auth.example.com" || c.AccessTTL() != 5*time.Minute {
		t.Fatalf("jwt no aplicado: %+v", c.JWT)
	}
	// defaults siguen rellenando lo no declarado
	if c.JWT.RefreshTTL != "720h" {
		t.Fatalf("default de refresh_ttl perdido: %q", c.JWT.RefreshTTL)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":9090"
`)
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("JWT_ACCESS_TTL", "1m")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":7070" {
		t.Fatalf("el entorno debe pisar al YAML: %q", c.Server.Addr)
	}
	if c.AccessTTL() != time.Minute {
		t.Fatalf("JWT_ACCESS_TTL no aplicado: %v", c.AccessTTL())
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load(writeYAML(t, "jwt:\n  access_ttl: nunca\n")); err == nil {
		t.Fatal("duración inválida debe fallar")
	}
	if _, err := Load(writeYAML(t, "storage:\n  driver: mongodb\n")); err == nil {
		t.Fatal("driver desconocido debe fallar")
	}
	if _, err := Load(writeYAML(t, "storage:\n  driver: postgres\n")); err == nil {
		t.Fatal("postgres sin DSN debe fallar")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "no-existe.yaml")); err == nil {
		t.Fatal("archivo inexistente debe fallar")
	}
}
