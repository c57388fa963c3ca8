package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// Dos redenciones concurrentes del mismo code: exactamente una gana.
func TestAuthorizationCodeConsumeExactlyOnce(t *testing.T) {
	st := New()
	ctx := context.Background()

	const hash = "hash-del-code"
	if _, err := st.AuthorizationCodes().Create(ctx, repository.CreateAuthorizationCodeInput{
		CodeHash: hash, UserID: "u1", TenantID: "t1",
		ClientID: "c1", RedirectURI: "https://app/cb", TTL: time.Minute,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = st.AuthorizationCodes().Consume(ctx, hash)
		}(i)
	}
	close(start)
	wg.Wait()

	wins, replays := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrConsumed):
			replays++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	if wins != 1 || replays != racers-1 {
		t.Fatalf("esperaba 1 ganador y %d replays, hubo %d/%d", racers-1, wins, replays)
	}
}

func TestAuthorizationCodeConsumeDiagnostics(t *testing.T) {
	st := New()
	ctx := context.Background()

	if _, err := st.AuthorizationCodes().Consume(ctx, "nunca-creado"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("esperaba ErrNotFound, dio %v", err)
	}

	if _, err := st.AuthorizationCodes().Create(ctx, repository.CreateAuthorizationCodeInput{
		CodeHash: "vencido", UserID: "u1", TenantID: "t1",
		ClientID: "c1", RedirectURI: "https://app/cb", TTL: -time.Minute,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.AuthorizationCodes().Consume(ctx, "vencido"); !errors.Is(err, repository.ErrExpired) {
		t.Fatalf("esperaba ErrExpired, dio %v", err)
	}
}

func TestMFAChallengeConsumeExactlyOnce(t *testing.T) {
	st := New()
	ctx := context.Background()

	if _, err := st.MFAChallenges().Create(ctx, repository.CreateMFAChallengeInput{
		SecretHash: "ch-hash", UserID: "u1", TenantID: "t1", TTL: time.Minute,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := st.MFAChallenges().Consume(ctx, "ch-hash"); err != nil {
		t.Fatalf("primer Consume: %v", err)
	}
	if _, err := st.MFAChallenges().Consume(ctx, "ch-hash"); !errors.Is(err, repository.ErrConsumed) {
		t.Fatalf("segundo Consume: esperaba ErrConsumed, dio %v", err)
	}
}

func TestBackupCodeUseCodeConcurrent(t *testing.T) {
	st := New()
	ctx := context.Background()
	st.SeedBackupCodes("t1", "u1", []string{"bc-hash"})

	const racers = 8
	var wg sync.WaitGroup
	oks := make([]bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := st.BackupCodes().UseCode(ctx, "t1", "u1", "bc-hash")
			if err != nil {
				t.Errorf("UseCode: %v", err)
			}
			oks[i] = ok
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range oks {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("un backup code debe gastarse exactamente una vez, se gastó %d", wins)
	}
	if n, _ := st.BackupCodes().CountRemaining(ctx, "t1", "u1"); n != 0 {
		t.Fatalf("CountRemaining: esperaba 0, dio %d", n)
	}
}

func TestRevokeCountsOnlyLiveTokens(t *testing.T) {
	st := New()
	ctx := context.Background()

	for _, h := range []string{"h1", "h2", "h3"} {
		if _, err := st.RefreshTokens().Create(ctx, repository.CreateRefreshTokenInput{
			TenantID: "t1", UserID: "u1", TokenHash: h, TTL: time.Hour,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if n, err := st.RefreshTokens().RevokeAllByUser(ctx, "t1", "u1"); err != nil || n != 3 {
		t.Fatalf("primera revocación: n=%d err=%v", n, err)
	}
	if n, err := st.RefreshTokens().RevokeAllByUser(ctx, "t1", "u1"); err != nil || n != 0 {
		t.Fatalf("segunda revocación: n=%d err=%v", n, err)
	}

	rt, err := st.RefreshTokens().GetByHash(ctx, "h2")
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !rt.Revoked {
		t.Fatal("el token debería figurar revocado")
	}
}

func TestConsentUpsertRefreshesWindow(t *testing.T) {
	st := New()
	ctx := context.Background()

	first, err := st.Consents().Upsert(ctx, "t1", "u1", "c1", []string{"openid"}, nil)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second, err := st.Consents().Upsert(ctx, "t1", "u1", "c1", []string{"openid", "profile"}, nil)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("el upsert debe actualizar la fila existente, no crear otra")
	}
	if !second.GrantedAt.Equal(first.GrantedAt) {
		t.Fatal("GrantedAt no debe moverse en re-confirmaciones")
	}
	if second.LastConfirmedAt.Before(first.LastConfirmedAt) {
		t.Fatal("LastConfirmedAt debe avanzar")
	}
	if len(second.Scopes) != 2 {
		t.Fatalf("scopes no actualizados: %v", second.Scopes)
	}
}
