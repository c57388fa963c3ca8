// Package memory implementa store.Store en memoria, con la misma semántica
// de atomicidad que el adapter pg. Pensado para tests y desarrollo local.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/security/password"
)

// Store implementa store.Store sobre maps con un mutex.
// El mutex único garantiza que Consume sea atómico frente a redenciones
// concurrentes, igual que el UPDATE condicional del adapter pg.
type Store struct {
	mu sync.Mutex

	tenants      map[string]repository.Tenant // por ID
	emailDomains []repository.EmailDomainMapping
	vanityHosts  []repository.VanityHostMapping
	clients      map[string]repository.Client // por client_id

	refreshTokens map[string]*repository.RefreshToken      // por hash
	authCodes     map[string]*repository.AuthorizationCode // por hash
	challenges    map[string]*repository.MFAChallenge      // por hash
	consents      map[string]*repository.Consent           // por tenant|user|client
	backupCodes   map[string]map[string]bool               // tenant|user -> codeHash -> usado
	rateLimits    map[string]repository.RateLimitConfig

	users map[string]*memUser // por tenant|lower(email)
	byID  map[string]*memUser // por tenant|userID
}

type memUser struct {
	principal    repository.Principal
	passwordHash string
	roles        []string
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		tenants:       map[string]repository.Tenant{},
		clients:       map[string]repository.Client{},
		refreshTokens: map[string]*repository.RefreshToken{},
		authCodes:     map[string]*repository.AuthorizationCode{},
		challenges:    map[string]*repository.MFAChallenge{},
		consents:      map[string]*repository.Consent{},
		backupCodes:   map[string]map[string]bool{},
		rateLimits:    map[string]repository.RateLimitConfig{},
		users:         map[string]*memUser{},
		byID:          map[string]*memUser{},
	}
}

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

// ─── Seeding (solo memory; en pg esto lo hace el CRUD externo) ───

// SeedTenant agrega un tenant.
func (s *Store) SeedTenant(t repository.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

// SeedEmailDomain agrega un mapping de dominio de email.
func (s *Store) SeedEmailDomain(m repository.EmailDomainMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emailDomains = append(s.emailDomains, m)
}

// SeedVanityHost agrega un mapping de vanity host.
func (s *Store) SeedVanityHost(m repository.VanityHostMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vanityHosts = append(s.vanityHosts, m)
}

// SeedClient agrega un OAuth client.
func (s *Store) SeedClient(c repository.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ClientID] = c
}

// SeedRateLimit agrega una config de rate limit.
func (s *Store) SeedRateLimit(c repository.RateLimitConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimits[c.EndpointKey] = c
}

// SeedUserInput describe un usuario a sembrar.
type SeedUserInput struct {
	UserID     string
	TenantID   string
	Email      string
	Password   string
	Active     bool
	Roles      []string
	TOTPSecret []byte // no-nil habilita MFA
}

// SeedUser agrega un usuario con password argon2id.
func (s *Store) SeedUser(in SeedUserInput) error {
	phc, err := password.Hash(password.Default, in.Password)
	if err != nil {
		return err
	}
	u := &memUser{
		principal: repository.Principal{
			UserID:     in.UserID,
			TenantID:   in.TenantID,
			Email:      strings.ToLower(in.Email),
			Active:     in.Active,
			MFAEnabled: len(in.TOTPSecret) > 0,
			TOTPSecret: in.TOTPSecret,
		},
		passwordHash: phc,
		roles:        in.Roles,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[in.TenantID+"|"+strings.ToLower(in.Email)] = u
	s.byID[in.TenantID+"|"+in.UserID] = u
	return nil
}

// SeedBackupCodes agrega backup codes (hashes) para un usuario.
func (s *Store) SeedBackupCodes(tenantID, userID string, hashes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tenantID + "|" + userID
	m := s.backupCodes[key]
	if m == nil {
		m = map[string]bool{}
		s.backupCodes[key] = m
	}
	for _, h := range hashes {
		m[h] = false
	}
}

// ─── TenantRepository ───

type tenantRepo Store

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tenants[id]; ok {
		return &t, nil
	}
	return nil, repository.ErrNotFound
}

func (r *tenantRepo) GetByName(ctx context.Context, name string) (*repository.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.Name == name {
			out := t
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *tenantRepo) ListEmailDomainMappings(ctx context.Context) ([]repository.EmailDomainMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.EmailDomainMapping
	for _, m := range r.emailDomains {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *tenantRepo) ListVanityHostMappings(ctx context.Context) ([]repository.VanityHostMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.VanityHostMapping
	for _, m := range r.vanityHosts {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

// ─── ClientRepository ───

type clientRepo Store

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[clientID]; ok {
		out := c
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

// ─── RefreshTokenRepository ───

type tokenRepo Store

func (r *tokenRepo) Create(ctx context.Context, in repository.CreateRefreshTokenInput) (string, error) {
	now := time.Now().UTC()
	rt := &repository.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		TenantID:  in.TenantID,
		TokenHash: in.TokenHash,
		IssuedAt:  now,
		ExpiresAt: now.Add(in.TTL),
		IssuedIP:  in.IssuedIP,
		UserAgent: in.UserAgent,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshTokens[in.TokenHash] = rt
	return rt.ID, nil
}

func (r *tokenRepo) GetByHash(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.refreshTokens[hash]; ok {
		out := *rt
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *tokenRepo) RevokeAll(ctx context.Context) (int, error) {
	return r.revokeWhere(func(*repository.RefreshToken) bool { return true })
}

func (r *tokenRepo) RevokeAllByTenant(ctx context.Context, tenantID string) (int, error) {
	return r.revokeWhere(func(rt *repository.RefreshToken) bool { return rt.TenantID == tenantID })
}

func (r *tokenRepo) RevokeAllByUser(ctx context.Context, tenantID, userID string) (int, error) {
	return r.revokeWhere(func(rt *repository.RefreshToken) bool {
		return rt.TenantID == tenantID && rt.UserID == userID
	})
}

func (r *tokenRepo) revokeWhere(match func(*repository.RefreshToken) bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rt := range r.refreshTokens {
		if !rt.Revoked && match(rt) {
			rt.Revoked = true
			n++
		}
	}
	return n, nil
}

// ─── AuthorizationCodeRepository ───

type codeRepo Store

func (r *codeRepo) Create(ctx context.Context, in repository.CreateAuthorizationCodeInput) (string, error) {
	now := time.Now().UTC()
	ac := &repository.AuthorizationCode{
		ID:              uuid.NewString(),
		CodeHash:        in.CodeHash,
		UserID:          in.UserID,
		TenantID:        in.TenantID,
		ClientID:        in.ClientID,
		RedirectURI:     in.RedirectURI,
		Scope:           in.Scope,
		CodeChallenge:   in.CodeChallenge,
		ChallengeMethod: in.ChallengeMethod,
		IssuedAt:        now,
		ExpiresAt:       now.Add(in.TTL),
		IssuedIP:        in.IssuedIP,
		UserAgent:       in.UserAgent,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authCodes[in.CodeHash] = ac
	return ac.ID, nil
}

func (r *codeRepo) Consume(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.authCodes[codeHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ac.Consumed {
		return nil, repository.ErrConsumed
	}
	if !time.Now().UTC().Before(ac.ExpiresAt) {
		return nil, repository.ErrExpired
	}
	ac.Consumed = true
	out := *ac
	return &out, nil
}

// ─── MFAChallengeRepository ───

type challengeRepo Store

func (r *challengeRepo) Create(ctx context.Context, in repository.CreateMFAChallengeInput) (string, error) {
	now := time.Now().UTC()
	ch := &repository.MFAChallenge{
		ID:         uuid.NewString(),
		SecretHash: in.SecretHash,
		UserID:     in.UserID,
		TenantID:   in.TenantID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(in.TTL),
		IssuedIP:   in.IssuedIP,
		UserAgent:  in.UserAgent,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challenges[in.SecretHash] = ch
	return ch.ID, nil
}

func (r *challengeRepo) Consume(ctx context.Context, secretHash string) (*repository.MFAChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[secretHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ch.Consumed {
		return nil, repository.ErrConsumed
	}
	if !time.Now().UTC().Before(ch.ExpiresAt) {
		return nil, repository.ErrExpired
	}
	ch.Consumed = true
	out := *ch
	return &out, nil
}

// ─── ConsentRepository ───

type consentRepo Store

func consentKey(tenantID, userID, clientID string) string {
	return tenantID + "|" + userID + "|" + clientID
}

func (r *consentRepo) Upsert(ctx context.Context, tenantID, userID, clientID string, scopes []string, expiresAt *time.Time) (*repository.Consent, error) {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	key := consentKey(tenantID, userID, clientID)
	if c, ok := r.consents[key]; ok {
		c.Scopes = append([]string(nil), scopes...)
		c.LastConfirmedAt = now
		c.ExpiresAt = expiresAt
		out := *c
		return &out, nil
	}
	c := &repository.Consent{
		ID:              uuid.NewString(),
		UserID:          userID,
		ClientID:        clientID,
		TenantID:        tenantID,
		Scopes:          append([]string(nil), scopes...),
		GrantedAt:       now,
		LastConfirmedAt: now,
		ExpiresAt:       expiresAt,
	}
	r.consents[key] = c
	out := *c
	return &out, nil
}

func (r *consentRepo) Get(ctx context.Context, tenantID, userID, clientID string) (*repository.Consent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.consents[consentKey(tenantID, userID, clientID)]; ok {
		out := *c
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

// ─── BackupCodeRepository ───

type backupRepo Store

func (r *backupRepo) UseCode(ctx context.Context, tenantID, userID, codeHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.backupCodes[tenantID+"|"+userID]
	if !ok {
		return false, nil
	}
	used, exists := m[codeHash]
	if !exists || used {
		return false, nil
	}
	m[codeHash] = true
	return true, nil
}

func (r *backupRepo) CountRemaining(ctx context.Context, tenantID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, used := range r.backupCodes[tenantID+"|"+userID] {
		if !used {
			n++
		}
	}
	return n, nil
}

// ─── RateLimitRepository ───

type rateRepo Store

func (r *rateRepo) GetByEndpoint(ctx context.Context, endpointKey string) (*repository.RateLimitConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rateLimits[endpointKey]; ok {
		out := c
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

// ─── IdentityStore ───

type identityRepo Store

func (r *identityRepo) VerifyCredential(ctx context.Context, tenantID, identifier, secret string) (*repository.Principal, error) {
	r.mu.Lock()
	u, ok := r.users[tenantID+"|"+strings.ToLower(strings.TrimSpace(identifier))]
	r.mu.Unlock()
	if !ok {
		// misma respuesta que password incorrecto
		return nil, repository.ErrNotFound
	}
	if !password.Verify(secret, u.passwordHash) {
		return nil, repository.ErrNotFound
	}
	out := u.principal
	return &out, nil
}

func (r *identityRepo) GetPrincipal(ctx context.Context, tenantID, userID string) (*repository.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[tenantID+"|"+userID]; ok {
		out := u.principal
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *identityRepo) GetRoles(ctx context.Context, tenantID, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[tenantID+"|"+userID]; ok {
		return append([]string(nil), u.roles...), nil
	}
	return nil, repository.ErrNotFound
}
