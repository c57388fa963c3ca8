package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(Default, "hunter2 con espacios ")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("formato PHC inesperado: %s", phc)
	}
	if !Verify("hunter2 con espacios ", phc) {
		t.Fatal("el password correcto debe verificar")
	}
	if Verify("hunter2 con espacios", phc) {
		t.Fatal("el whitespace es parte del password")
	}
	if Verify("otra-cosa", phc) {
		t.Fatal("un password incorrecto no debe verificar")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash(Default, "mismo")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash(Default, "mismo")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("dos hashes del mismo password deben diferir por el salt")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := Hash(Default, ""); err == nil {
		t.Fatal("password vacío debe fallar")
	}
}

func TestVerifyRejectsGarbagePHC(t *testing.T) {
	for _, phc := range []string{
		"",
		"$argon2id$v=19$m=65536,t=3,p=1$salt",
		"$bcrypt$whatever",
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=x,t=y,p=z$c2FsdA$ZGs",
	} {
		if Verify("pw", phc) {
			t.Fatalf("PHC %q no debería verificar", phc)
		}
	}
}
