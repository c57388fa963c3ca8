package jwt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newSigner(t *testing.T) *Signer {
	t.Helper()
	ks, err := NewEd25519("test-kid")
	if err != nil {
		t.Fatalf("NewEd25519: %v", err)
	}
	return NewSigner("https://issuer.test", "gatekeeper", ks)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	s := newSigner(t)
	in := Claims{
		Subject:  "user-1",
		TenantID: "tenant-1",
		Roles:    []string{"admin", "user"},
		Scope:    "openid profile",
	}

	token, exp, err := s.Issue(in, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("exp debería estar en el futuro: %v", exp)
	}

	out, err := s.Validate(token, true)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if out.Subject != in.Subject || out.TenantID != in.TenantID || out.Scope != in.Scope {
		t.Fatalf("claims no coinciden: %+v", out)
	}
	if len(out.Roles) != 2 || out.Roles[0] != "admin" {
		t.Fatalf("roles no coinciden: %v", out.Roles)
	}
	if out.KID != "test-kid" {
		t.Fatalf("kid esperado test-kid, llegó %q", out.KID)
	}
	if out.ExpiredAt(time.Now()) {
		t.Fatal("token recién emitido no puede estar expirado")
	}
}

func TestValidateExpiredIsNotInvalid(t *testing.T) {
	s := newSigner(t)
	token, _, err := s.Issue(Claims{Subject: "u", TenantID: "t"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// La validación pasa: expiración la decide el caller.
	claims, err := s.Validate(token, true)
	if err != nil {
		t.Fatalf("un token expirado pero bien firmado debe validar: %v", err)
	}
	if !claims.ExpiredAt(time.Now()) {
		t.Fatal("ExpiredAt debería reportar true")
	}
}

func TestValidateRejectsMalformedWithoutPanic(t *testing.T) {
	s := newSigner(t)
	for _, tok := range []string{"", "garbage", "a.b", "a.b.c", strings.Repeat("x", 5000)} {
		if _, err := s.Validate(tok, true); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q debería dar ErrInvalidToken, dio %v", tok, err)
		}
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	s1 := newSigner(t)
	s2 := newSigner(t)

	token, _, err := s1.Issue(Claims{Subject: "u", TenantID: "t"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := s2.Validate(token, true); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("firma ajena debería rechazarse, dio %v", err)
	}
}

func TestValidateRejectsWrongIssuerAndAudience(t *testing.T) {
	ks, err := NewEd25519("kid")
	if err != nil {
		t.Fatalf("NewEd25519: %v", err)
	}
	a := NewSigner("https://a.test", "aud-a", ks)
	b := NewSigner("https://b.test", "aud-a", ks)
	c := NewSigner("https://a.test", "aud-c", ks)

	token, _, err := a.Issue(Claims{Subject: "u"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Validate(token, true); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("issuer distinto debería rechazarse, dio %v", err)
	}
	if _, err := c.Validate(token, true); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("audience distinta debería rechazarse, dio %v", err)
	}
}

func TestValidateWithoutSignatureCheck(t *testing.T) {
	s := newSigner(t)
	token, _, err := s.Issue(Claims{Subject: "u", TenantID: "t"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := s.Validate(token, false)
	if err != nil {
		t.Fatalf("Validate sin firma: %v", err)
	}
	if claims.Subject != "u" {
		t.Fatalf("claims inesperadas: %+v", claims)
	}
}

func TestJWKSJSONShape(t *testing.T) {
	ks, err := NewEd25519("kid-1")
	if err != nil {
		t.Fatalf("NewEd25519: %v", err)
	}
	var doc struct {
		Keys []map[string]string `json:"keys"`
	}
	if err := json.Unmarshal(ks.JWKSJSON(), &doc); err != nil {
		t.Fatalf("JWKS no es JSON válido: %v", err)
	}
	if len(doc.Keys) != 1 {
		t.Fatalf("JWKS debe exponer exactamente una clave activa, expone %d", len(doc.Keys))
	}
	k := doc.Keys[0]
	if k["kty"] != "OKP" || k["crv"] != "Ed25519" || k["alg"] != "EdDSA" || k["kid"] != "kid-1" || k["x"] == "" {
		t.Fatalf("JWK inesperada: %v", k)
	}
}
