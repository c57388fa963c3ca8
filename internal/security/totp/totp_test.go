package totp

import (
	"testing"
	"time"
)

var rfcSecret = []byte("12345678901234567890")

// Vectores de RFC 4226, apéndice D.
func TestCodeRFC4226Vectors(t *testing.T) {
	want := []string{"755224", "287082", "359152", "969429", "338314", "254676"}
	for counter, expected := range want {
		if got := Code(rfcSecret, int64(counter)); got != expected {
			t.Fatalf("counter %d: esperaba %s, dio %s", counter, expected, got)
		}
	}
}

// Vector de RFC 6238 (SHA-1, 8 dígitos truncado a 6): t=59 → 94287082.
func TestCodeAtRFC6238(t *testing.T) {
	if got := CodeAt(rfcSecret, time.Unix(59, 0)); got != "287082" {
		t.Fatalf("t=59: esperaba 287082, dio %s", got)
	}
}

func TestVerifyWindow(t *testing.T) {
	now := time.Unix(1111111109, 0) // counter 37037036

	if !Verify(rfcSecret, Code(rfcSecret, 37037036), now, 1) {
		t.Fatal("el código del step actual debe validar")
	}
	if !Verify(rfcSecret, Code(rfcSecret, 37037035), now, 1) {
		t.Fatal("el código del step anterior debe validar con ventana 1")
	}
	if !Verify(rfcSecret, Code(rfcSecret, 37037037), now, 1) {
		t.Fatal("el código del step siguiente debe validar con ventana 1")
	}
	if Verify(rfcSecret, Code(rfcSecret, 37037034), now, 1) {
		t.Fatal("dos steps atrás queda fuera de la ventana")
	}
}

func TestVerifyRejectsMalformedCodes(t *testing.T) {
	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		if Verify(rfcSecret, code, now, 1) {
			t.Fatalf("código %q no debería validar", code)
		}
	}
}
