package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// KeySet mantiene la única clave de firma activa. El algoritmo es pluggable
// a nivel de KeySet (hoy Ed25519); siempre hay exactamente una clave activa
// y su pública se expone vía JWKS.
type KeySet struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
	KID  string
	Alg  string // "EdDSA"
}

// NewEd25519 genera una clave Ed25519 en memoria con un KID dado.
func NewEd25519(kid string) (*KeySet, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeySet{Priv: priv, Pub: pub, KID: kid, Alg: "EdDSA"}, nil
}

// LoadOrCreate carga la seed Ed25519 desde path, o la genera y persiste si
// no existe. El KID se deriva de los primeros bytes de la pública.
func LoadOrCreate(path string) (*KeySet, error) {
	if b, err := os.ReadFile(path); err == nil {
		seed, err := base64.RawURLEncoding.DecodeString(string(b))
		if err != nil || len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("jwt: seed file %s corrupto", path)
		}
		priv := ed25519.NewKeyFromSeed(seed)
		pub := priv.Public().(ed25519.PublicKey)
		return &KeySet{Priv: priv, Pub: pub, KID: deriveKID(pub), Alg: "EdDSA"}, nil
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	enc := base64.RawURLEncoding.EncodeToString(priv.Seed())
	if err := os.WriteFile(path, []byte(enc), 0o600); err != nil {
		return nil, fmt.Errorf("jwt: persistir seed: %w", err)
	}
	return &KeySet{Priv: priv, Pub: pub, KID: deriveKID(pub), Alg: "EdDSA"}, nil
}

func deriveKID(pub ed25519.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(pub[:8])
}

// ----- JWKS (serialización) -----

type jwk struct {
	Kty string `json:"kty"` // "OKP"
	Crv string `json:"crv"` // "Ed25519"
	Kid string `json:"kid"`
	Alg string `json:"alg"` // "EdDSA"
	Use string `json:"use"` // "sig"
	X   string `json:"x"`   // base64url(pub)
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWKSJSON devuelve el JWKS (solo la pública) en JSON.
func (k *KeySet) JWKSJSON() []byte {
	j := jwks{
		Keys: []jwk{{
			Kty: "OKP",
			Crv: "Ed25519",
			Kid: k.KID,
			Alg: k.Alg,
			Use: "sig",
			X:   base64.RawURLEncoding.EncodeToString(k.Pub),
		}},
	}
	b, _ := json.Marshal(j)
	return b
}
