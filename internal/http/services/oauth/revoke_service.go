package oauth

import (
	"context"
	"errors"
	"strconv"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/events"
	"github.com/dropDatabas3/gatekeeper/internal/metrics"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/store"
)

// Errors for revocations aimed at a nonexistent target.
var (
	ErrUnknownTenant = errors.New("tenant does not exist")
	ErrUnknownUser   = errors.New("user does not exist")
)

// RevokeService performs bulk refresh-token revocations for incident
// response. Revocation is at-least-once: a token validated a moment earlier
// stays usable for that one in-flight call, nothing validates afterwards.
type RevokeService interface {
	RevokeAll(ctx context.Context) (int, error)
	RevokeForTenant(ctx context.Context, tenantID string) (int, error)
	RevokeForUser(ctx context.Context, tenantID, userID string) (int, error)
}

// RevokeDeps contains dependencies for RevokeService.
type RevokeDeps struct {
	Store  store.Store
	Events events.Publisher
}

type revokeService struct {
	store  store.Store
	events events.Publisher
}

// NewRevokeService creates a RevokeService.
func NewRevokeService(d RevokeDeps) RevokeService {
	ev := d.Events
	if ev == nil {
		ev = events.Noop{}
	}
	return &revokeService{store: d.Store, events: ev}
}

func (s *revokeService) RevokeAll(ctx context.Context) (int, error) {
	n, err := s.store.RefreshTokens().RevokeAll(ctx)
	if err != nil {
		return 0, err
	}
	s.report(ctx, "all", "", n)
	return n, nil
}

func (s *revokeService) RevokeForTenant(ctx context.Context, tenantID string) (int, error) {
	if _, err := s.store.Tenants().GetByID(ctx, tenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUnknownTenant
		}
		return 0, err
	}
	n, err := s.store.RefreshTokens().RevokeAllByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	s.report(ctx, "tenant", tenantID, n)
	return n, nil
}

func (s *revokeService) RevokeForUser(ctx context.Context, tenantID, userID string) (int, error) {
	if _, err := s.store.Tenants().GetByID(ctx, tenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUnknownTenant
		}
		return 0, err
	}
	if _, err := s.store.Identities().GetPrincipal(ctx, tenantID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUnknownUser
		}
		return 0, err
	}
	n, err := s.store.RefreshTokens().RevokeAllByUser(ctx, tenantID, userID)
	if err != nil {
		return 0, err
	}
	s.report(ctx, "user", tenantID, n)
	return n, nil
}

func (s *revokeService) report(ctx context.Context, scope, tenantID string, n int) {
	metrics.RevokedTokens.WithLabelValues(scope).Add(float64(n))
	logger.From(ctx).Info("bulk revocation",
		logger.Layer("service"), logger.Op("RevokeService"),
		logger.String("scope", scope), logger.TenantID(tenantID), logger.Count(n))
	s.events.Publish(ctx, events.Event{
		Type: events.TypeTokensRevoked, TenantID: tenantID,
		Attributes: map[string]string{"scope": scope, "count": strconv.Itoa(n)},
	})
}
