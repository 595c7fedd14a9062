//go:build integration

package containers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/db"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
)

// PostgresContainer is a throwaway postgres with the users schema applied.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	URL       string
	Pool      *pgxpool.Pool
}

// NewPostgresContainer starts postgres and registers cleanup on t.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("rhythmix"),
		tcpostgres.WithUsername("rhythmix"),
		tcpostgres.WithPassword("rhythmix"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(context.Background())
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	log, err := logger.NewWithWriter(io.Discard, "", "test", "error")
	if err != nil {
		_ = container.Terminate(context.Background())
		t.Fatalf("failed to build logger: %v", err)
	}

	pool, err := db.NewPool(ctx, log, url)
	if err != nil {
		_ = container.Terminate(context.Background())
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		_ = container.Terminate(context.Background())
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, URL: url, Pool: pool}
	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(context.Background())
	})
	return pc
}

// Truncate empties the users table and restarts its sequence.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, `TRUNCATE TABLE users RESTART IDENTITY`)
	return err
}
