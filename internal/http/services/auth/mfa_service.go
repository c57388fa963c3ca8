// Package auth contains services for authentication endpoints.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/events"
	oauthdto "github.com/dropDatabas3/gatekeeper/internal/http/dto/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
	"github.com/dropDatabas3/gatekeeper/internal/security/totp"
	"github.com/dropDatabas3/gatekeeper/internal/store"
)

// ErrChallengeInvalid covers every challenge redemption failure: unknown,
// consumed, expired challenge, or wrong code. Indistinguishable on the wire.
var ErrChallengeInvalid = errors.New("mfa challenge redemption failed")

const totpWindowSteps = 1

// MFAService completes a password grant interrupted by a second-factor
// requirement. The challenge is consumed BEFORE the code check, so a wrong
// code burns the challenge and the client must log in again.
type MFAService interface {
	VerifyTOTP(ctx context.Context, challengeToken, code string, meta common.RequestMeta) (*oauthdto.TokenResponse, error)
	VerifyBackupCode(ctx context.Context, challengeToken, backupCode string, meta common.RequestMeta) (*oauthdto.TokenResponse, error)
}

// MFADeps contains dependencies for MFAService.
type MFADeps struct {
	Store  store.Store
	Issuer *common.TokenIssuer
	Events events.Publisher
}

type mfaService struct {
	store  store.Store
	issuer *common.TokenIssuer
	events events.Publisher
}

// NewMFAService creates an MFAService.
func NewMFAService(d MFADeps) MFAService {
	ev := d.Events
	if ev == nil {
		ev = events.Noop{}
	}
	return &mfaService{store: d.Store, issuer: d.Issuer, events: ev}
}

func (s *mfaService) VerifyTOTP(ctx context.Context, challengeToken, code string, meta common.RequestMeta) (*oauthdto.TokenResponse, error) {
	ch, principal, err := s.redeemChallenge(ctx, challengeToken)
	if err != nil {
		return nil, err
	}
	if len(principal.TOTPSecret) == 0 || !totp.Verify(principal.TOTPSecret, code, time.Now().UTC(), totpWindowSteps) {
		logger.From(ctx).Info("totp verification failed",
			logger.Layer("service"), logger.Op("MFAService.VerifyTOTP"),
			logger.TenantID(ch.TenantID), logger.UserID(ch.UserID))
		return nil, ErrChallengeInvalid
	}
	return s.finish(ctx, ch, meta, "totp")
}

func (s *mfaService) VerifyBackupCode(ctx context.Context, challengeToken, backupCode string, meta common.RequestMeta) (*oauthdto.TokenResponse, error) {
	ch, _, err := s.redeemChallenge(ctx, challengeToken)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.BackupCodes().UseCode(ctx, ch.TenantID, ch.UserID, tokens.SHA256Base64URL(backupCode))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChallengeInvalid
	}

	remaining, err := s.store.BackupCodes().CountRemaining(ctx, ch.TenantID, ch.UserID)
	if err == nil && remaining <= 2 {
		logger.From(ctx).Warn("backup codes running low",
			logger.Layer("service"), logger.Op("MFAService.VerifyBackupCode"),
			logger.TenantID(ch.TenantID), logger.UserID(ch.UserID), logger.Count(remaining))
	}
	return s.finish(ctx, ch, meta, "backup_code")
}

// redeemChallenge consumes the single-use challenge and loads its principal.
func (s *mfaService) redeemChallenge(ctx context.Context, challengeToken string) (*repository.MFAChallenge, *repository.Principal, error) {
	if challengeToken == "" {
		return nil, nil, ErrChallengeInvalid
	}
	ch, err := s.store.MFAChallenges().Consume(ctx, tokens.SHA256Base64URL(challengeToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConsumed) || errors.Is(err, repository.ErrExpired) {
			return nil, nil, ErrChallengeInvalid
		}
		return nil, nil, err
	}

	principal, err := s.store.Identities().GetPrincipal(ctx, ch.TenantID, ch.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrChallengeInvalid
		}
		return nil, nil, err
	}
	if !principal.Active {
		return nil, nil, ErrChallengeInvalid
	}
	return ch, principal, nil
}

func (s *mfaService) finish(ctx context.Context, ch *repository.MFAChallenge, meta common.RequestMeta, method string) (*oauthdto.TokenResponse, error) {
	resp, err := s.issuer.Issue(ctx, ch.TenantID, ch.UserID, "", meta)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{
		Type: events.TypeMFAVerified, TenantID: ch.TenantID, UserID: ch.UserID,
		Attributes: map[string]string{"method": method},
	})
	return resp, nil
}
