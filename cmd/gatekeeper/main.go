// gatekeeper: servidor de autorización OAuth2/OIDC multi-tenant.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/gatekeeper/internal/cache"
	memcache "github.com/dropDatabas3/gatekeeper/internal/cache/memory"
	redcache "github.com/dropDatabas3/gatekeeper/internal/cache/redis"
	"github.com/dropDatabas3/gatekeeper/internal/config"
	"github.com/dropDatabas3/gatekeeper/internal/events"
	adminctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/oauth"
	oidcctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/oidc"
	securityctrl "github.com/dropDatabas3/gatekeeper/internal/http/controllers/security"
	"github.com/dropDatabas3/gatekeeper/internal/http/router"
	"github.com/dropDatabas3/gatekeeper/internal/http/server"
	authsvc "github.com/dropDatabas3/gatekeeper/internal/http/services/auth"
	"github.com/dropDatabas3/gatekeeper/internal/http/services/common"
	oauthsvc "github.com/dropDatabas3/gatekeeper/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/gatekeeper/internal/jwt"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	"github.com/dropDatabas3/gatekeeper/internal/rate"
	"github.com/dropDatabas3/gatekeeper/internal/store"
	"github.com/dropDatabas3/gatekeeper/internal/store/memory"
	"github.com/dropDatabas3/gatekeeper/internal/store/pg"
	"github.com/dropDatabas3/gatekeeper/internal/tenant"
	migrations "github.com/dropDatabas3/gatekeeper/migrations/postgres"
)

var configPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "gatekeeper",
		Short:         "Multi-tenant OAuth2/OIDC authorization server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path al YAML de configuración")

	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				ServiceName: cfg.App.Name,
				Version:     cfg.App.Version,
			})
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler, cleanup, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return server.New(cfg.Server.Addr, handler).Run(ctx)
		},
	}
}

// buildApp arma el grafo de dependencias completo.
func buildApp(ctx context.Context, cfg *config.Config) (handler http.Handler, cleanup func(), err error) {
	cleanup = func() {}

	// Store
	var st store.Store
	var pinger healthctrl.Pinger
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, pg.Config{
			DSN:          cfg.Storage.DSN,
			MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
			MinIdleConns: cfg.Storage.Postgres.MinIdleConns,
		})
		if err != nil {
			return nil, cleanup, err
		}
		st = pgStore
		pinger = pgStore
		cleanup = pgStore.Close
	default:
		st = memory.New()
	}

	// Redis (cache, rate limiting, eventos) — opcional
	var redisClient *goredis.Client
	if cfg.Cache.Kind == "redis" || cfg.Rate.Enabled || cfg.Events.Enabled {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}

	var c cache.Cache
	if cfg.Cache.Kind == "redis" {
		c = redcache.New(redisClient, cfg.Cache.Redis.Prefix)
	} else {
		c = memcache.New(cfg.MemoryCacheTTL(), 5*time.Minute)
	}

	// Firma
	keys, err := jwtx.LoadOrCreate(cfg.JWT.KeyPath)
	if err != nil {
		return nil, cleanup, err
	}
	signer := jwtx.NewSigner(cfg.JWT.Issuer, cfg.JWT.Audience, keys)

	// Eventos
	var publisher events.Publisher = events.Noop{}
	if cfg.Events.Enabled && redisClient != nil {
		publisher = events.NewRedisPublisher(redisClient, cfg.Events.Channel)
	}

	// Rate limiting
	var limiter *rate.Limiter
	if cfg.Rate.Enabled && redisClient != nil {
		provider := rate.NewConfigProvider(st.RateLimits(), c, 30*time.Second)
		limiter = rate.NewLimiter(redisClient, provider)
	}

	// Servicios
	issuer := &common.TokenIssuer{
		Store:      st,
		Signer:     signer,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}
	resolver := tenant.NewResolver(st.Tenants())

	tokenSvc := oauthsvc.NewTokenService(oauthsvc.TokenDeps{
		Store: st, Resolver: resolver, Issuer: issuer, Events: publisher,
	})
	authorizeSvc := oauthsvc.NewAuthorizeService(oauthsvc.AuthorizeDeps{
		Store: st, Signer: signer, Events: publisher,
	})
	introspectSvc := oauthsvc.NewIntrospectService(oauthsvc.IntrospectDeps{
		Store: st, Signer: signer,
	})
	revokeSvc := oauthsvc.NewRevokeService(oauthsvc.RevokeDeps{Store: st, Events: publisher})
	mfaSvc := authsvc.NewMFAService(authsvc.MFADeps{Store: st, Issuer: issuer, Events: publisher})

	h := router.New(router.Deps{
		Token:      oauthctrl.NewTokenController(tokenSvc),
		Authorize:  oauthctrl.NewAuthorizeController(authorizeSvc),
		Introspect: oauthctrl.NewIntrospectController(introspectSvc),
		MFA:        authctrl.NewMFAController(mfaSvc),
		Revoke:     adminctrl.NewRevokeController(revokeSvc),
		JWT:        securityctrl.NewJWTController(signer),
		JWKS:       oidcctrl.NewJWKSController(keys),
		Discovery:  oidcctrl.NewDiscoveryController(cfg.JWT.Issuer),
		Health:     healthctrl.NewController(pinger),
		Signer:     signer,
		Limiter:    limiter,
		AdminRole:  cfg.Admin.Role,
	})
	return h, cleanup, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones postgres embebidas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requiere storage.driver=postgres")
			}

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries, err := migrations.FS.ReadDir(".")
			if err != nil {
				return err
			}
			var ups []string
			for _, e := range entries {
				if name := e.Name(); len(name) > 7 && name[len(name)-7:] == "_up.sql" {
					ups = append(ups, name)
				}
			}
			sort.Strings(ups)

			for _, name := range ups {
				sql, err := migrations.FS.ReadFile(name)
				if err != nil {
					return err
				}
				if _, err := pool.Exec(ctx, string(sql)); err != nil {
					return fmt.Errorf("migración %s: %w", name, err)
				}
				fmt.Println("applied", name)
			}
			return nil
		},
	}
}
