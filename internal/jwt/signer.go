// Package jwt emite y valida los access tokens firmados del servicio.
package jwt

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken cubre todo token que no pasa firma/issuer/audience o está
// malformado. La validación nunca paniquea: siempre retorna este error.
var ErrInvalidToken = errors.New("jwt: invalid token")

// Claims son las claims que el servicio emite y lee.
type Claims struct {
	Subject   string
	TenantID  string
	Roles     []string
	Scope     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	KID       string
}

// ExpiredAt indica si el token ya venció en el instante dado.
// La expiración se chequea acá, FUERA de Validate, para que el caller pueda
// distinguir "válido pero expirado" de "inválido".
func (c *Claims) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Signer firma y valida JWTs con la clave activa del KeySet.
type Signer struct {
	Iss  string
	Aud  string
	Keys *KeySet
}

// NewSigner crea un Signer con issuer y audience fijos.
func NewSigner(iss, aud string, ks *KeySet) *Signer {
	return &Signer{Iss: iss, Aud: aud, Keys: ks}
}

// Issue emite un token firmado con las claims dadas y el TTL indicado.
func (s *Signer) Issue(c Claims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwtv5.MapClaims{
		"iss": s.Iss,
		"aud": s.Aud,
		"sub": c.Subject,
		"tid": c.TenantID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	if len(c.Roles) > 0 {
		claims["roles"] = c.Roles
	}
	if c.Scope != "" {
		claims["scope"] = c.Scope
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = s.Keys.KID
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(s.Keys.Priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Validate verifica firma (si checkSignature), issuer y audience, y retorna
// las claims. NO chequea expiración: eso lo hace el caller vía ExpiredAt,
// para distinguir "expirado" de "inválido". Input malformado retorna
// ErrInvalidToken, nunca un panic.
func (s *Signer) Validate(token string, checkSignature bool) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	var parsed *jwtv5.Token
	var err error

	if checkSignature {
		keyfunc := func(t *jwtv5.Token) (any, error) {
			if kid, _ := t.Header["kid"].(string); kid != "" && kid != s.Keys.KID {
				return nil, ErrInvalidToken
			}
			return ed25519.PublicKey(s.Keys.Pub), nil
		}
		parsed, err = jwtv5.Parse(token, keyfunc,
			jwtv5.WithValidMethods([]string{"EdDSA"}),
			jwtv5.WithoutClaimsValidation(), // exp la chequea el caller
		)
		if err != nil || !parsed.Valid {
			return nil, ErrInvalidToken
		}
	} else {
		parser := jwtv5.NewParser(jwtv5.WithoutClaimsValidation())
		parsed, _, err = parser.ParseUnverified(token, jwtv5.MapClaims{})
		if err != nil {
			return nil, ErrInvalidToken
		}
	}

	mc, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if iss, _ := mc["iss"].(string); iss != s.Iss {
		return nil, ErrInvalidToken
	}
	if aud, _ := mc["aud"].(string); aud != s.Aud {
		return nil, ErrInvalidToken
	}

	out := &Claims{}
	out.Subject, _ = mc["sub"].(string)
	out.TenantID, _ = mc["tid"].(string)
	out.Scope, _ = mc["scope"].(string)
	if kid, ok := parsed.Header["kid"].(string); ok {
		out.KID = kid
	}
	if iatf, ok := mc["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iatf), 0).UTC()
	}
	expf, ok := mc["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	out.ExpiresAt = time.Unix(int64(expf), 0).UTC()

	if raw, ok := mc["roles"].([]any); ok {
		for _, v := range raw {
			if r, ok := v.(string); ok && r != "" {
				out.Roles = append(out.Roles, r)
			}
		}
	}
	return out, nil
}
