package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/config"
	"github.com/spec-kit/pao-metrics/internal/observability"
	"github.com/spec-kit/pao-metrics/internal/persistence"
	"github.com/spec-kit/pao-metrics/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	root := newRootCmd(func(ctx context.Context) (*backend, error) {
		return openBackend(ctx, cfg, logger)
	}, cfg.Auth.BcryptCost)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openBackend connects to Postgres. The admin tool has no demo mode.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	if !cfg.Postgres.Configured() {
		return nil, errNoDatabase
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	pool := pg.PoolHandle()
	return &backend{
		users:    repository.NewUserRepository(pool),
		profiles: repository.NewProfileRepository(pool),
		migrate: func(ctx context.Context) error {
			return persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger)
		},
		close: pg.Close,
	}, nil
}
