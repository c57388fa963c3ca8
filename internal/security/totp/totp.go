package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"fmt"
	"math"
	"strings"
	"time"
)

// Verify valida un código TOTP en ventana +/- windowSteps (RFC 6238,
// período 30s, 6 dígitos, HMAC-SHA1).
func Verify(secretRaw []byte, code string, t time.Time, windowSteps int) bool {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return false
	}
	counter := t.Unix() / 30
	for c := counter - int64(windowSteps); c <= counter+int64(windowSteps); c++ {
		if Code(secretRaw, c) == code {
			return true
		}
	}
	return false
}

// Code genera el código HOTP para un contador dado (RFC 4226).
func Code(secretRaw []byte, counter int64) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}
	m := hmac.New(sha1.New, secretRaw)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := (int(sum[offset])&0x7f)<<24 | int(sum[offset+1])<<16 | int(sum[offset+2])<<8 | int(sum[offset+3])
	otp := bin % int(math.Pow10(6))
	return fmt.Sprintf("%06d", otp)
}

// CodeAt genera el código vigente en el instante dado. Útil en tests.
func CodeAt(secretRaw []byte, t time.Time) string {
	return Code(secretRaw, t.Unix()/30)
}
