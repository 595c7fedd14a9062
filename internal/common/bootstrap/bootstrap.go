package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/config"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/db"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
	userrepo "github.com/AlibekovAA/rhythmix/backend/internal/user/repository"
)

type AuthApp struct {
	Log      *logger.Logger
	Config   config.AuthConfig
	UserRepo userrepo.Repository
	Pool     *pgxpool.Pool
}

func NewAuthApp(ctx context.Context) (*AuthApp, error) {
	log, err := logger.New(os.Getenv("LOG_DIR"), "auth", os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := &AuthApp{Log: log, Config: cfg}

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
		app.Pool = pool
		app.UserRepo = userrepo.NewPgRepository(pool, log)
	default:
		app.UserRepo = userrepo.NewMemoryRepository()
	}

	log.Infof("user store backend: %s", cfg.StoreBackend)
	return app, nil
}

func (a *AuthApp) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
