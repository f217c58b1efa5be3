package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/pao-metrics/internal/api/http"
	"github.com/spec-kit/pao-metrics/internal/api/http/handlers"
	"github.com/spec-kit/pao-metrics/internal/app"
	"github.com/spec-kit/pao-metrics/internal/auth"
	"github.com/spec-kit/pao-metrics/internal/config"
	"github.com/spec-kit/pao-metrics/internal/datasource"
	"github.com/spec-kit/pao-metrics/internal/events"
	"github.com/spec-kit/pao-metrics/internal/navigation"
	"github.com/spec-kit/pao-metrics/internal/observability"
	"github.com/spec-kit/pao-metrics/internal/persistence"
	"github.com/spec-kit/pao-metrics/internal/plan"
	"github.com/spec-kit/pao-metrics/internal/repository"
	"github.com/spec-kit/pao-metrics/internal/session"
	"github.com/spec-kit/pao-metrics/internal/social"
	"github.com/spec-kit/pao-metrics/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gate, err := navigation.DefaultGate()
	if err != nil {
		logger.Fatal("failed to load navigation table", zap.Error(err))
	}
	mock, err := datasource.MockDataset()
	if err != nil {
		logger.Fatal("failed to load mock dataset", zap.Error(err))
	}

	// A missing or unreachable database puts every shell into demo mode.
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("postgres unavailable; serving demo data", zap.Error(err))
		pg = &persistence.Postgres{}
	}
	defer pg.Close()
	demo := !pg.Enabled()

	if !demo && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	registryCfg := app.RegistryConfig{
		Demo:        demo,
		Mock:        mock,
		Gate:        gate,
		Generator:   newGenerator(ctx, cfg.GenAI, logger),
		DemoTimeout: cfg.Shell.DemoTimeout,
		Logger:      logger,
	}

	var (
		redis         *persistence.Redis
		authenticator handlers.Authenticator
		socials       = handlers.SocialServices{Demo: social.NewService(social.NewMemoryStore(), logger)}
		readyPG       handlers.Pinger
		readyRedis    handlers.Pinger
	)
	if !demo {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()

		pool := pg.PoolHandle()
		profiles := repository.NewProfileRepository(pool)
		provider := auth.NewProvider(auth.ProviderDependencies{
			Users:      repository.NewUserRepository(pool),
			Sessions:   auth.NewRedisSessionStore(redis.Client),
			Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
			Bus:        events.NewInMemoryBus(),
			Logger:     logger,
			BcryptCost: cfg.Auth.BcryptCost,
			SessionTTL: cfg.Auth.SessionTTL(),
		})
		authenticator = provider
		socials.Live = social.NewService(repository.NewSocialRepository(pool), logger)

		registryCfg.AuthFor = func(clientID string) session.AuthProvider { return provider.ForClient(clientID) }
		registryCfg.Profiles = profiles
		registryCfg.Writer = profiles
		registryCfg.Store = datasource.NewRepositoryStore(
			repository.NewKpiRepository(pool),
			repository.NewCampaignRepository(pool),
			repository.NewGoalRepository(pool),
		)
		readyPG, readyRedis = pg, redis
	}

	registry := app.NewRegistry(registryCfg)
	defer registry.Close()

	janitor := worker.NewJanitor(registry, metrics, logger, cfg.Shell.JanitorInterval, cfg.Shell.IdleTTL)
	go janitor.Run(ctx)

	fiberApp := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(fiberApp, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(fiberApp, httptransport.RouteConfig{
		Shells:       registry,
		ClientCookie: cfg.Shell.ClientCookie,
		SecureCookie: cfg.App.Env == "production",
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, demo, readyPG, readyRedis),
		Metrics:      handlers.NewMetricsHandler(metrics),
		Auth:         handlers.NewAuthHandler(authenticator),
		State:        handlers.NewStateHandler(socials),
		Kpi:          handlers.NewKpiHandler(),
		Plan:         handlers.NewPlanHandler(),
		Social:       handlers.NewSocialHandler(socials),
		Profile:      handlers.NewProfileHandler(),
	})

	logger.Info("starting server", zap.String("addr", cfg.App.Addr()), zap.Bool("demo", demo))
	go func() {
		if err := fiberApp.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = fiberApp.Shutdown()
}

// newGenerator falls back to a generator that always fails, which the
// wizard turns into its fixed error text.
func newGenerator(ctx context.Context, cfg config.GenAIConfig, logger *zap.Logger) plan.Generator {
	if !cfg.Configured() {
		logger.Warn("GENAI_API_KEY missing or placeholder; plan generation disabled")
		return plan.Unavailable()
	}
	gen, err := plan.NewGenAIGenerator(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Error("genai client", zap.Error(err))
		return plan.Unavailable()
	}
	return gen
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
