// Package pg implementa store.Store sobre PostgreSQL usando pgxpool.
// Todas las escrituras son single-statement: no hay transacciones multi-paso
// que un context cancelado pueda dejar a medias.
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
)

// Config para el pool de conexiones.
type Config struct {
	DSN          string
	MaxOpenConns int
	MinIdleConns int
}

// Store implementa store.Store sobre un pgxpool.
type Store struct {
	pool *pgxpool.Pool
}

// New abre el pool y verifica conectividad.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MinIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MinIdleConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close cierra el pool.
func (s *Store) Close() { s.pool.Close() }

// Ping verifica la conexión (readiness).
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Tenants() repository.TenantRepository             { return (*tenantRepo)(s) }
func (s *Store) Clients() repository.ClientRepository             { return (*clientRepo)(s) }
func (s *Store) RefreshTokens() repository.RefreshTokenRepository { return (*tokenRepo)(s) }
func (s *Store) AuthorizationCodes() repository.AuthorizationCodeRepository {
	return (*codeRepo)(s)
}
func (s *Store) Consents() repository.ConsentRepository           { return (*consentRepo)(s) }
func (s *Store) MFAChallenges() repository.MFAChallengeRepository { return (*challengeRepo)(s) }
func (s *Store) BackupCodes() repository.BackupCodeRepository     { return (*backupRepo)(s) }
func (s *Store) RateLimits() repository.RateLimitRepository       { return (*rateRepo)(s) }
func (s *Store) Identities() repository.IdentityStore             { return (*identityRepo)(s) }
